package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"ricemill/backend/internal/attachments"
	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/ledger"
	"ricemill/backend/internal/xid"
)

const maxPhotoDimension = attachments.DefaultPhotoMaxDimension

func (s *Service) ListReconciliations(ctx context.Context) ([]domain.Reconciliation, error) {
	intakes, err := s.repo.ListPaddyIntakes(ctx)
	if err != nil {
		return nil, err
	}
	states, err := s.repo.ListReconciliationStates(ctx)
	if err != nil {
		return nil, err
	}
	return reconciliationViews(intakes, states), nil
}

func reconciliationViews(intakes []domain.PaddyIntake, states []domain.ReconciliationState) []domain.Reconciliation {
	byKey := make(map[string]domain.ReconciliationState, len(states))
	for _, state := range states {
		byKey[state.CenterKey] = state
	}
	totals := ledger.CenterTotals(intakes)
	views := make([]domain.Reconciliation, 0, len(totals))
	for _, total := range totals {
		var state *domain.ReconciliationState
		if found, ok := byKey[total.CenterKey]; ok {
			state = &found
		}
		views = append(views, ledger.ReconciliationView(total, state))
	}
	return views
}

func (s *Service) GetReconciliation(ctx context.Context, centerKey string) (domain.Reconciliation, error) {
	views, err := s.ListReconciliations(ctx)
	if err != nil {
		return domain.Reconciliation{}, err
	}
	for _, view := range views {
		if view.CenterKey == centerKey {
			return view, nil
		}
	}
	return domain.Reconciliation{}, domain.ErrNotFound
}

func (s *Service) Reconcile(ctx context.Context, centerKey string, req domain.ReconcileRequest) (domain.ReconcileResponse, error) {
	centerKey = strings.TrimSpace(centerKey)
	_, applied, err := s.repo.Reconcile(ctx, centerKey, req.Amount, strings.TrimSpace(req.Notes), s.now().UTC())
	if err != nil {
		return domain.ReconcileResponse{}, err
	}
	view, err := s.GetReconciliation(ctx, centerKey)
	if err != nil {
		return domain.ReconcileResponse{}, err
	}
	s.logger.Info("center reconciled",
		zap.String("center_key", centerKey),
		zap.Float64("requested", req.Amount),
		zap.Float64("applied", applied),
		zap.String("status", string(view.Status)),
		zap.String("by", s.actorName(ctx)))
	return domain.ReconcileResponse{Reconciliation: view, Applied: applied}, nil
}

func (s *Service) attachmentStore() (attachments.Store, error) {
	if s.attachments == nil {
		return nil, domain.Invalid("attachment storage is not configured")
	}
	return s.attachments, nil
}

func (s *Service) AttachReconciliationDocument(ctx context.Context, centerKey string, filename string, data []byte, notes string) (domain.Reconciliation, error) {
	files, err := s.attachmentStore()
	if err != nil {
		return domain.Reconciliation{}, err
	}
	if len(data) == 0 {
		return domain.Reconciliation{}, domain.Invalid("document is empty")
	}
	centerKey = strings.TrimSpace(centerKey)
	if _, err := s.GetReconciliation(ctx, centerKey); err != nil {
		return domain.Reconciliation{}, err
	}

	now := s.now().UTC()
	ref, err := files.Put(ctx, attachments.ObjectName("reconciliations/"+centerKey, filename, now), http.DetectContentType(data), data)
	if err != nil {
		return domain.Reconciliation{}, fmt.Errorf("store reconciliation document: %w", err)
	}
	if _, err := s.repo.AttachReconciliationDocument(ctx, centerKey, ref, strings.TrimSpace(notes), now); err != nil {
		return domain.Reconciliation{}, err
	}
	s.logger.Info("reconciliation document attached", zap.String("center_key", centerKey), zap.String("ref", ref))
	return s.GetReconciliation(ctx, centerKey)
}

// ReconciliationDocument returns the stored document and its reference.
func (s *Service) ReconciliationDocument(ctx context.Context, centerKey string) ([]byte, string, error) {
	view, err := s.GetReconciliation(ctx, strings.TrimSpace(centerKey))
	if err != nil {
		return nil, "", err
	}
	if view.DocumentRef == "" {
		return nil, "", domain.ErrNotFound
	}
	return s.readAttachment(ctx, view.DocumentRef)
}

func (s *Service) readAttachment(ctx context.Context, ref string) ([]byte, string, error) {
	files, err := s.attachmentStore()
	if err != nil {
		return nil, "", err
	}
	data, err := files.Get(ctx, ref)
	if errors.Is(err, attachments.ErrNotFound) {
		return nil, "", domain.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return data, ref, nil
}

func (s *Service) ListGunnyDispatches(ctx context.Context) ([]domain.GunnyDispatch, error) {
	return s.repo.ListGunnyDispatches(ctx)
}

func (s *Service) CreateGunnyDispatch(ctx context.Context, req domain.GunnyDispatchRequest) (domain.GunnyDispatch, error) {
	if err := s.check(req); err != nil {
		return domain.GunnyDispatch{}, err
	}
	date, err := s.parseDay("dispatch_date", req.DispatchDate)
	if err != nil {
		return domain.GunnyDispatch{}, err
	}

	dispatch := domain.GunnyDispatch{
		ID:           xid.New("gunny"),
		Center:       strings.TrimSpace(req.Center),
		District:     strings.TrimSpace(req.District),
		Quantity:     req.Quantity,
		DispatchDate: date,
		Status:       ledger.GunnyStatus(false),
		Comments:     strings.TrimSpace(req.Comments),
		CreatedAt:    s.now().UTC(),
	}
	created, err := s.repo.CreateGunnyDispatch(ctx, dispatch)
	if err != nil {
		return domain.GunnyDispatch{}, err
	}
	s.logger.Info("old gunny dispatched", zap.String("id", created.ID), zap.String("center", created.Center), zap.Int("quantity", created.Quantity))
	return *created, nil
}

// SetGunnyAcknowledgement records the center's acknowledgement. The ack date
// defaults to today when set and is cleared when the acknowledgement is withdrawn.
func (s *Service) SetGunnyAcknowledgement(ctx context.Context, id string, req domain.GunnyAckRequest) (domain.GunnyDispatch, error) {
	if err := s.check(req); err != nil {
		return domain.GunnyDispatch{}, err
	}
	var ackDate *time.Time
	if req.Acknowledged {
		day, err := s.parseDay("ack_date", req.AckDate)
		if err != nil {
			return domain.GunnyDispatch{}, err
		}
		ackDate = &day
	}
	now := s.now().UTC()

	saved, err := s.repo.UpdateGunnyDispatch(ctx, strings.TrimSpace(id), func(dispatch *domain.GunnyDispatch) error {
		dispatch.Acknowledged = req.Acknowledged
		dispatch.AckDate = ackDate
		dispatch.Status = ledger.GunnyStatus(req.Acknowledged)
		dispatch.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return domain.GunnyDispatch{}, err
	}
	s.logger.Info("gunny acknowledgement updated", zap.String("id", saved.ID), zap.Bool("acknowledged", saved.Acknowledged))
	return *saved, nil
}

func (s *Service) AttachGunnyPhoto(ctx context.Context, id string, filename string, data []byte) (domain.GunnyDispatch, error) {
	files, err := s.attachmentStore()
	if err != nil {
		return domain.GunnyDispatch{}, err
	}
	dispatch, err := s.repo.GetGunnyDispatch(ctx, strings.TrimSpace(id))
	if err != nil {
		return domain.GunnyDispatch{}, err
	}
	photo, err := attachments.PreparePhoto(data, maxPhotoDimension)
	if err != nil {
		return domain.GunnyDispatch{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	now := s.now().UTC()
	base := strings.TrimSuffix(filename, pathExt(filename)) + ".jpg"
	ref, err := files.Put(ctx, attachments.ObjectName("gunny/"+dispatch.ID, base, now), "image/jpeg", photo)
	if err != nil {
		return domain.GunnyDispatch{}, fmt.Errorf("store gunny photo: %w", err)
	}

	saved, err := s.repo.UpdateGunnyDispatch(ctx, dispatch.ID, func(current *domain.GunnyDispatch) error {
		current.AckPhotoRef = ref
		current.UpdatedAt = &now
		return nil
	})
	if err != nil {
		return domain.GunnyDispatch{}, err
	}
	s.logger.Info("gunny ack photo attached", zap.String("id", saved.ID), zap.String("ref", ref), zap.Int("bytes", len(photo)))
	return *saved, nil
}

func (s *Service) GunnyPhoto(ctx context.Context, id string) ([]byte, string, error) {
	dispatch, err := s.repo.GetGunnyDispatch(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, "", err
	}
	if dispatch.AckPhotoRef == "" {
		return nil, "", domain.ErrNotFound
	}
	return s.readAttachment(ctx, dispatch.AckPhotoRef)
}

func pathExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 && !strings.ContainsAny(name[i:], `/\`) {
		return name[i:]
	}
	return ""
}
