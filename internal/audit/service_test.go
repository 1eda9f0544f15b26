package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/testutil"
)

func auditCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.New([]model.ChecklistItem{
		{
			ID:       "reentrancy-001",
			Category: model.CategoryReentrancy,
			Title:    "No external calls before state updates",
			Severity: model.SeverityHigh,
			Detection: model.DetectionMethod{
				Type:     model.DetectionAutomatic,
				Patterns: []string{"external_call_before_state_update"},
			},
			Remediation: "Persist state before invoking.",
		},
		{
			ID:       "numerical-001",
			Category: model.CategoryNumericalSafety,
			Title:    "No unchecked arithmetic",
			Severity: model.SeverityCritical,
			Detection: model.DetectionMethod{
				Type:     model.DetectionAutomatic,
				Patterns: []string{"unchecked_add"},
			},
		},
		{
			ID:       "state-001",
			Category: model.CategoryStateManagement,
			Title:    "Persistent state is not kept in temporary storage",
			Severity: model.SeverityHigh,
			Detection: model.DetectionMethod{
				Type:     model.DetectionSemiAutomatic,
				Patterns: []string{`storage\(\)\.temporary\(\)\.set`},
			},
		},
		{
			ID:        "access-001",
			Category:  model.CategoryAccessControl,
			Title:     "Admin functions require authorization",
			Severity:  model.SeverityCritical,
			Detection: model.DetectionMethod{Type: model.DetectionManual},
		},
	})
	require.NoError(t, err)
	return cat
}

func setupService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc, err := NewService(db.Storage, auditCatalog(t))
	require.NoError(t, err)
	return svc, db
}

func checkByID(t *testing.T, resp *model.AuditResponse, id string) model.CheckWithStatus {
	t.Helper()
	for _, check := range resp.Checks {
		if check.ID == id {
			return check
		}
	}
	t.Fatalf("check %q not in response", id)
	return model.CheckWithStatus{}
}

func TestService_CreateAudit_NoSource(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	resp, err := svc.CreateAudit(ctx, contract.ID, "alice", nil)
	require.NoError(t, err)

	// One pending row per catalog item, nothing auto-detected.
	require.Len(t, resp.Checks, 4)
	for _, check := range resp.Checks {
		assert.Equal(t, model.CheckPending, check.Status, "check %s", check.ID)
		assert.False(t, check.AutoDetected)
		assert.Nil(t, check.Evidence)
	}
	assert.Zero(t, resp.AutoDetectedCount)
	assert.Equal(t, contract.ID, resp.Audit.ContractID)
	assert.Equal(t, "alice", resp.Audit.Auditor)
	assert.InDelta(t, 0, resp.Audit.OverallScore, 0.01)
}

func TestService_CreateAudit_WithSource(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	source := `
		fn swap(env: Env) {
			external_call_before_state_update();
			env.storage().temporary().set(&key, &value);
		}
	`
	resp, err := svc.CreateAudit(ctx, contract.ID, "alice", &source)
	require.NoError(t, err)

	// Matched automatic item fails with evidence.
	reentrancy := checkByID(t, resp, "reentrancy-001")
	assert.Equal(t, model.CheckFailed, reentrancy.Status)
	assert.True(t, reentrancy.AutoDetected)
	require.NotNil(t, reentrancy.Evidence)
	assert.Equal(t, "external_call_before_state_update", *reentrancy.Evidence)

	// Unmatched automatic item passes.
	numerical := checkByID(t, resp, "numerical-001")
	assert.Equal(t, model.CheckPassed, numerical.Status)
	assert.True(t, numerical.AutoDetected)

	// Matched semi-automatic item fails with evidence.
	state := checkByID(t, resp, "state-001")
	assert.Equal(t, model.CheckFailed, state.Status)
	assert.True(t, state.AutoDetected)

	// Manual item is untouched.
	access := checkByID(t, resp, "access-001")
	assert.Equal(t, model.CheckPending, access.Status)
	assert.False(t, access.AutoDetected)

	assert.Equal(t, 3, resp.AutoDetectedCount)
	// passed critical (8) over all weights (8 + 5 + 5 + 8)
	assert.InDelta(t, 100.0*8/26, resp.Audit.OverallScore, 0.01)
}

func TestService_CreateAudit_SemiAutomaticIsNeverAutoPassed(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	source := "fn noop() {}"
	resp, err := svc.CreateAudit(ctx, contract.ID, "alice", &source)
	require.NoError(t, err)

	state := checkByID(t, resp, "state-001")
	assert.Equal(t, model.CheckPending, state.Status)
	assert.False(t, state.AutoDetected)
}

func TestService_CreateAudit_Invalid(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	t.Run("blank auditor", func(t *testing.T) {
		_, err := svc.CreateAudit(ctx, contract.ID, "   ", nil)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("unknown contract", func(t *testing.T) {
		_, err := svc.CreateAudit(ctx, "missing", "alice", nil)
		assert.ErrorIs(t, err, common.ErrNotFound)

		// Nothing was written for the failed attempt.
		audits, listErr := svc.ListAudits(ctx, contract.ID)
		require.NoError(t, listErr)
		assert.Empty(t, audits)
	})
}

func TestService_GetAudit(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	created, err := svc.CreateAudit(ctx, contract.ID, "alice", nil)
	require.NoError(t, err)

	t.Run("reads are stable", func(t *testing.T) {
		first, err := svc.GetAudit(ctx, created.Audit.ID)
		require.NoError(t, err)
		second, err := svc.GetAudit(ctx, created.Audit.ID)
		require.NoError(t, err)

		assert.Equal(t, first.Checks, second.Checks)
		assert.Equal(t, first.CategoryScores, second.CategoryScores)
		assert.InDelta(t, created.Audit.OverallScore, first.Audit.OverallScore, 0.01)
	})

	t.Run("unknown audit", func(t *testing.T) {
		_, err := svc.GetAudit(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestService_UpdateCheck(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	source := "external_call_before_state_update()"
	created, err := svc.CreateAudit(ctx, contract.ID, "alice", &source)
	require.NoError(t, err)
	auditID := created.Audit.ID

	t.Run("manual verdict overrides detection", func(t *testing.T) {
		notes := "guarded by reentrancy lock, false positive"
		check, err := svc.UpdateCheck(ctx, auditID, "reentrancy-001", model.CheckPassed, &notes)
		require.NoError(t, err)

		assert.Equal(t, model.CheckPassed, check.Status)
		assert.False(t, check.AutoDetected)
		require.NotNil(t, check.Notes)
		assert.Equal(t, notes, *check.Notes)

		// The override sticks and the auto-detected count drops.
		resp, err := svc.GetAudit(ctx, auditID)
		require.NoError(t, err)
		assert.Equal(t, created.AutoDetectedCount-1, resp.AutoDetectedCount)
		assert.Greater(t, resp.Audit.OverallScore, created.Audit.OverallScore)
	})

	t.Run("cached score tracks every verdict", func(t *testing.T) {
		for _, id := range []string{"numerical-001", "state-001", "access-001"} {
			_, err := svc.UpdateCheck(ctx, auditID, id, model.CheckPassed, nil)
			require.NoError(t, err)
		}

		summary, err := svc.SecuritySummary(ctx, contract.ID)
		require.NoError(t, err)
		assert.InDelta(t, 100, summary.OverallScore, 0.01)
		assert.Equal(t, "A+", summary.ScoreBadge)
	})

	t.Run("not applicable removes the check from scoring", func(t *testing.T) {
		_, err := svc.UpdateCheck(ctx, auditID, "access-001", model.CheckNotApplicable, nil)
		require.NoError(t, err)

		resp, err := svc.GetAudit(ctx, auditID)
		require.NoError(t, err)
		assert.InDelta(t, 100, resp.Audit.OverallScore, 0.01)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := svc.UpdateCheck(ctx, auditID, "access-001", "meh", nil)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("unknown check id", func(t *testing.T) {
		_, err := svc.UpdateCheck(ctx, auditID, "missing", model.CheckPassed, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("unknown audit id", func(t *testing.T) {
		_, err := svc.UpdateCheck(ctx, "missing", "access-001", model.CheckPassed, nil)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestService_ExportAudit(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	source := "external_call_before_state_update()"
	created, err := svc.CreateAudit(ctx, contract.ID, "alice", &source)
	require.NoError(t, err)

	doc, err := svc.ExportAudit(ctx, created.Audit.ID, model.ExportOptions{IncludeDescriptions: true})
	require.NoError(t, err)
	assert.Contains(t, doc, "# Security Audit Report")
	assert.Contains(t, doc, "### [FAILED] reentrancy-001")
	assert.Contains(t, doc, "- Evidence: `external_call_before_state_update`")

	_, err = svc.ExportAudit(ctx, "missing", model.ExportOptions{})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestService_AuditHistory(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	contract := db.SeedContract("token")

	first, err := svc.CreateAudit(ctx, contract.ID, "alice", nil)
	require.NoError(t, err)
	second, err := svc.CreateAudit(ctx, contract.ID, "bob", nil)
	require.NoError(t, err)

	audits, err := svc.ListAudits(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, audits, 2)

	t.Run("summary reflects the latest audit", func(t *testing.T) {
		summary, err := svc.SecuritySummary(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, second.Audit.ID, summary.AuditID)
		assert.Equal(t, "bob", summary.Auditor)
	})

	t.Run("delete removes one audit", func(t *testing.T) {
		require.NoError(t, svc.DeleteAudit(ctx, second.Audit.ID))

		audits, err := svc.ListAudits(ctx, contract.ID)
		require.NoError(t, err)
		require.Len(t, audits, 1)
		assert.Equal(t, first.Audit.ID, audits[0].ID)
	})

	t.Run("summary without audits is not found", func(t *testing.T) {
		fresh := db.SeedContract("fresh")
		_, err := svc.SecuritySummary(ctx, fresh.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
