package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{1,98}[a-z0-9])$`)

// TenantStatusCache holds recently read tenant statuses.
type TenantStatusCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (string, bool)
	Set(ctx context.Context, tenantID uuid.UUID, status string)
	Invalidate(ctx context.Context, tenantID uuid.UUID)
}

type nopStatusCache struct{}

func (nopStatusCache) Get(context.Context, uuid.UUID) (string, bool) { return "", false }
func (nopStatusCache) Set(context.Context, uuid.UUID, string)        {}
func (nopStatusCache) Invalidate(context.Context, uuid.UUID)         {}

type ProvisionTenantRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Plan     string `json:"plan"`
	Timezone string `json:"timezone"`
}

// TenantService administers tenant accounts. Tenants are global rows, so
// its units of work run as trusted cross-tenant paths.
type TenantService struct {
	store *repository.Store
	cache TenantStatusCache
	audit AuditSink
	log   *slog.Logger
}

func NewTenantService(store *repository.Store, cache TenantStatusCache, audit AuditSink, log *slog.Logger) *TenantService {
	if cache == nil {
		cache = nopStatusCache{}
	}
	return &TenantService{store: store, cache: cache, audit: audit, log: log}
}

// ProvisionTenant creates an ACTIVE tenant. Slugs are globally unique.
func (s *TenantService) ProvisionTenant(ctx context.Context, req ProvisionTenantRequest) (*model.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if name == "" {
		return nil, utils.Validation(utils.ReasonInvalidInput, "tenant name is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, utils.Validation(utils.ReasonInvalidInput, "invalid tenant slug %q", req.Slug)
	}

	config := model.JSONMap{model.ConfigKeyFeatures: map[string]interface{}{}}
	if req.Timezone != "" {
		config[model.ConfigKeyTimezone] = req.Timezone
	}
	tenant := &model.Tenant{
		Name:   name,
		Slug:   slug,
		Status: model.TenantStatusActive,
		Plan:   req.Plan,
		Config: config,
	}

	bypass := tenancy.WithBypass(ctx)
	err := s.store.Transaction(bypass, func(tx *repository.Tx) error {
		exists, err := tx.Tenants.ExistsBySlug(bypass, slug)
		if err != nil {
			return err
		}
		if exists {
			return utils.Validation(utils.ReasonDuplicate, "tenant slug %q is already taken", slug)
		}
		if err := tx.Tenants.Create(bypass, tenant); err != nil {
			return asDuplicate(err, utils.ReasonDuplicate, "tenant slug is already taken")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, constants.ActionCreate, constants.ResourceTypeTenant, tenant.ID.String(), nil, tenant)
	s.log.Info("tenant provisioned", slog.String("tenant_id", tenant.ID.String()), slog.String("slug", slug))
	return tenant, nil
}

func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	bypass := tenancy.WithBypass(ctx)
	var tenant *model.Tenant
	err := s.store.Transaction(bypass, func(tx *repository.Tx) error {
		var err error
		tenant, err = tx.Tenants.GetByID(bypass, id)
		return notFound(err, constants.ResourceTypeTenant, id.String())
	})
	return tenant, err
}

// GetStatus returns the tenant status, consulting the cache first.
func (s *TenantService) GetStatus(ctx context.Context, id uuid.UUID) (string, error) {
	if status, ok := s.cache.Get(ctx, id); ok {
		return status, nil
	}
	tenant, err := s.GetTenant(ctx, id)
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, id, tenant.Status)
	return tenant.Status, nil
}

// ListActiveTenantIDs returns the tenants scheduled jobs must process.
func (s *TenantService) ListActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	bypass := tenancy.WithBypass(ctx)
	var ids []uuid.UUID
	err := s.store.Transaction(bypass, func(tx *repository.Tx) error {
		tenants, err := tx.Tenants.ListByStatus(bypass, model.TenantStatusActive)
		if err != nil {
			return err
		}
		ids = make([]uuid.UUID, 0, len(tenants))
		for _, t := range tenants {
			ids = append(ids, t.ID)
		}
		return nil
	})
	return ids, err
}

func (s *TenantService) SuspendTenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return s.setStatus(ctx, id, model.TenantStatusSuspended, constants.ActionSuspend)
}

func (s *TenantService) ReactivateTenant(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return s.setStatus(ctx, id, model.TenantStatusActive, constants.ActionReactivate)
}

func (s *TenantService) setStatus(ctx context.Context, id uuid.UUID, status, action string) (*model.Tenant, error) {
	bypass := tenancy.WithBypass(ctx)
	var previous string
	var tenant *model.Tenant
	err := s.store.Transaction(bypass, func(tx *repository.Tx) error {
		var err error
		tenant, err = tx.Tenants.GetByID(bypass, id)
		if err != nil {
			return notFound(err, constants.ResourceTypeTenant, id.String())
		}
		previous = tenant.Status
		if previous == status {
			return nil
		}
		if err := tx.Tenants.UpdateStatus(bypass, id, status); err != nil {
			return err
		}
		tenant.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	if previous != status {
		s.audit.Log(ctx, action, constants.ResourceTypeTenant, id.String(),
			map[string]string{"status": previous}, map[string]string{"status": status})
		s.log.Info("tenant status changed",
			slog.String("tenant_id", id.String()),
			slog.String("from", previous),
			slog.String("to", status),
		)
	}
	return tenant, nil
}
