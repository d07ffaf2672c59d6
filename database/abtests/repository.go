package abtests

import (
	"fmt"
	"math"
	"time"

	"qrmenu-reco/database"
	models "qrmenu-reco/database/models_pkg"

	"gorm.io/gorm"
)

// Test lifecycle states
const (
	StatusDraft     = "draft"
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// Assignment groups
const (
	GroupControl = "control"
	GroupVariant = "variant"
)

// Repository handles database operations for A/B test configurations
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new abtests repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Validate rejects invalid configurations before a test can become
// active. Assignment never sees a test that fails these checks.
func Validate(test *models.ABTestConfig) error {
	if test.Name == "" {
		return database.NewValidationError("name", "must not be empty")
	}
	if test.VariantAlgorithm == "" {
		return database.NewValidationError("variant_algorithm", "must not be empty")
	}
	if test.ControlAlgorithm == "" {
		return database.NewValidationError("control_algorithm", "must not be empty")
	}
	if test.TrafficSplitPct < 0 || test.TrafficSplitPct > 100 {
		return database.NewValidationErrorWithValue("traffic_split_pct", "must be within [0,100]", test.TrafficSplitPct)
	}
	if !test.StartsAt.IsZero() && !test.EndsAt.IsZero() && !test.StartsAt.Before(test.EndsAt) {
		return database.NewValidationError("ends_at", "must be after starts_at")
	}
	return nil
}

// Create stores a new test in draft state
func (r *Repository) Create(test *models.ABTestConfig) error {
	if err := Validate(test); err != nil {
		return err
	}
	test.Status = StatusDraft
	if err := r.db.Create(test).Error; err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a draft or paused test
func (r *Repository) Update(test *models.ABTestConfig) error {
	if err := Validate(test); err != nil {
		return err
	}

	current, err := r.Get(test.TenantID, test.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return database.NewNotFoundErrorWithID("ab test", test.ID)
	}
	if current.Status == StatusRunning || current.Status == StatusCompleted {
		return database.NewValidationErrorWithValue("status", "cannot edit a running or completed test", current.Status)
	}

	err = r.db.Model(&models.ABTestConfig{}).
		Where("tenant_id = ? AND id = ?", test.TenantID, test.ID).
		Updates(map[string]interface{}{
			"name":              test.Name,
			"control_algorithm": test.ControlAlgorithm,
			"variant_algorithm": test.VariantAlgorithm,
			"traffic_split_pct": test.TrafficSplitPct,
			"starts_at":         test.StartsAt,
			"ends_at":           test.EndsAt,
		}).Error
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	return nil
}

// Get retrieves one test by id, nil if absent
func (r *Repository) Get(tenantID string, id int64) (*models.ABTestConfig, error) {
	var test models.ABTestConfig
	err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&test).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &test, nil
}

// List retrieves all tests for a tenant, newest first
func (r *Repository) List(tenantID string) ([]models.ABTestConfig, error) {
	var tests []models.ABTestConfig
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&tests).Error
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return tests, nil
}

// RunningTest finds the tenant's currently running test whose
// [starts_at, ends_at) window contains now. Absence is not an error;
// assignment falls back to control.
func (r *Repository) RunningTest(tenantID string, now time.Time) (*models.ABTestConfig, error) {
	var test models.ABTestConfig
	err := r.db.Where("tenant_id = ? AND status = ? AND starts_at <= ? AND ends_at > ?",
		tenantID, StatusRunning, now, now).
		Order("starts_at DESC").
		First(&test).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("RunningTest: %w", err)
	}
	return &test, nil
}

// Transition moves a test through its lifecycle:
// draft → running → {paused, completed}, paused → running.
func (r *Repository) Transition(tenantID string, id int64, newStatus string) error {
	test, err := r.Get(tenantID, id)
	if err != nil {
		return err
	}
	if test == nil {
		return database.NewNotFoundErrorWithID("ab test", id)
	}

	allowed := map[string][]string{
		StatusDraft:   {StatusRunning},
		StatusRunning: {StatusPaused, StatusCompleted},
		StatusPaused:  {StatusRunning, StatusCompleted},
	}
	ok := false
	for _, next := range allowed[test.Status] {
		if next == newStatus {
			ok = true
			break
		}
	}
	if !ok {
		return database.NewValidationErrorWithValue("status",
			fmt.Sprintf("cannot transition from %s", test.Status), newStatus)
	}

	// A test may only start with a validated configuration
	if newStatus == StatusRunning {
		if err := Validate(test); err != nil {
			return err
		}
	}

	err = r.db.Model(&models.ABTestConfig{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", newStatus).Error
	if err != nil {
		return fmt.Errorf("Transition: %w", err)
	}
	return nil
}

// Attributable reports whether a conversion stamped with (group, testID)
// belongs to the given running test. A session bucketed under an earlier
// test, or one never assigned at all, must not credit the current test.
func Attributable(test *models.ABTestConfig, group string, testID int64) bool {
	if test == nil || testID == 0 || test.ID != testID {
		return false
	}
	return group == GroupControl || group == GroupVariant
}

// RecordConversion attributes one conversion and its revenue to the
// test's control or variant bucket and refreshes the significance
// measure. No-op when the tenant has no running test or the event's
// test stamp does not match it.
func (r *Repository) RecordConversion(tenantID, group string, testID int64, revenue float64, now time.Time) error {
	test, err := r.RunningTest(tenantID, now)
	if err != nil {
		return err
	}
	if !Attributable(test, group, testID) {
		return nil
	}

	updates := map[string]interface{}{}
	switch group {
	case GroupVariant:
		updates["variant_conversions"] = gorm.Expr("variant_conversions + 1")
		updates["variant_revenue"] = gorm.Expr("variant_revenue + ?", revenue)
		test.VariantConversions++
	case GroupControl:
		updates["control_conversions"] = gorm.Expr("control_conversions + 1")
		updates["control_revenue"] = gorm.Expr("control_revenue + ?", revenue)
		test.ControlConversions++
	}

	significance := Significance(test.ControlConversions, test.VariantConversions)
	updates["significance"] = significance

	err = r.db.Model(&models.ABTestConfig{}).
		Where("tenant_id = ? AND id = ?", tenantID, test.ID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("RecordConversion: %w", err)
	}
	return nil
}

// DeclareWinner records the operator's decision on a completed test
func (r *Repository) DeclareWinner(tenantID string, id int64, winner string) error {
	if winner != GroupControl && winner != GroupVariant {
		return database.NewValidationErrorWithValue("winner", "must be control or variant", winner)
	}
	err := r.db.Model(&models.ABTestConfig{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("winner", winner).Error
	if err != nil {
		return fmt.Errorf("DeclareWinner: %w", err)
	}
	return nil
}

// Significance scores the difference between the two conversion counts.
// Poisson approximation: z = (variant - control) / sqrt(variant + control).
// Informational only; completing a test and declaring a winner stays an
// operator decision.
func Significance(controlConversions, variantConversions int64) float64 {
	total := controlConversions + variantConversions
	if total == 0 {
		return 0
	}
	diff := float64(variantConversions - controlConversions)
	return diff / math.Sqrt(float64(total))
}
