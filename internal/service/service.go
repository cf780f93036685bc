package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ricemill/backend/internal/attachments"
	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	MillName    string
	Tariff      domain.Tariff
	AckTarget   int
	Attachments attachments.Store
	Logger      *zap.Logger
	Now         func() time.Time
}

type Service struct {
	repo        store.Repository
	millName    string
	tariff      domain.Tariff
	ackTarget   int
	attachments attachments.Store
	logger      *zap.Logger
	validate    *validator.Validate
	now         func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	if opts.MillName == "" {
		opts.MillName = "Rice Mill"
	}
	if opts.Tariff == (domain.Tariff{}) {
		opts.Tariff = domain.DefaultTariff()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	return &Service{
		repo:        repo,
		millName:    opts.MillName,
		tariff:      opts.Tariff,
		ackTarget:   opts.AckTarget,
		attachments: opts.Attachments,
		logger:      opts.Logger,
		validate:    validate,
		now:         opts.Now,
	}
}

func (s *Service) Tariff() domain.Tariff {
	return s.tariff
}

func (s *Service) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return domain.Invalid("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return domain.Invalid("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDay reads a YYYY-MM-DD value; blank means today.
func (s *Service) parseDay(field string, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.today(), nil
	}
	day, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.Invalid("%s must be YYYY-MM-DD", field)
	}
	return day, nil
}

func (s *Service) actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Username
	}
	return "system"
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
