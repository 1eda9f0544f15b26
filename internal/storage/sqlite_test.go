package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorobanhub/registry/internal/common"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newContract(name string, network model.Network) *model.Contract {
	return &model.Contract{
		ID:      uuid.NewString(),
		Address: "C" + uuid.NewString(),
		Name:    name,
		Network: network,
	}
}

func newAudit(contractID string, date time.Time) *model.AuditRecord {
	return &model.AuditRecord{
		ID:         uuid.NewString(),
		ContractID: contractID,
		Auditor:    "alice",
		AuditDate:  date,
	}
}

func newCheckRow(auditID, checkID string, status model.CheckStatus) model.AuditCheckRow {
	return model.AuditCheckRow{
		ID:      uuid.NewString(),
		AuditID: auditID,
		CheckID: checkID,
		Status:  status,
	}
}

func TestSQLiteStorage_Contracts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	t.Run("save and get roundtrip", func(t *testing.T) {
		contract := newContract("token", model.NetworkTestnet)
		contract.Description = "a token"
		contract.Publisher = "acme"
		require.NoError(t, store.SaveContract(ctx, contract))

		got, err := store.GetContract(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, contract.Address, got.Address)
		assert.Equal(t, "token", got.Name)
		assert.Equal(t, "a token", got.Description)
		assert.Equal(t, "acme", got.Publisher)
		assert.Equal(t, model.NetworkTestnet, got.Network)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("save again updates mutable fields", func(t *testing.T) {
		contract := newContract("before", model.NetworkMainnet)
		require.NoError(t, store.SaveContract(ctx, contract))

		contract.Name = "after"
		require.NoError(t, store.SaveContract(ctx, contract))

		got, err := store.GetContract(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Name)
	})

	t.Run("missing contract is not found", func(t *testing.T) {
		_, err := store.GetContract(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("invalid contract is rejected", func(t *testing.T) {
		err := store.SaveContract(ctx, &model.Contract{ID: uuid.NewString()})
		assert.Error(t, err)
	})
}

func TestSQLiteStorage_ListContracts(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	mainnet := newContract("amm-pool", model.NetworkMainnet)
	testnet := newContract("amm-pool-test", model.NetworkTestnet)
	other := newContract("oracle", model.NetworkTestnet)
	for _, c := range []*model.Contract{mainnet, testnet, other} {
		require.NoError(t, store.SaveContract(ctx, c))
	}

	t.Run("no filter returns everything", func(t *testing.T) {
		contracts, total, err := store.ListContracts(ctx, service.ContractFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, contracts, 3)
	})

	t.Run("network filter", func(t *testing.T) {
		contracts, total, err := store.ListContracts(ctx, service.ContractFilter{Network: model.NetworkMainnet})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, contracts, 1)
		assert.Equal(t, mainnet.ID, contracts[0].ID)
	})

	t.Run("query matches name substring", func(t *testing.T) {
		_, total, err := store.ListContracts(ctx, service.ContractFilter{Query: "amm"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("query matches address", func(t *testing.T) {
		contracts, total, err := store.ListContracts(ctx, service.ContractFilter{Query: other.Address})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, contracts, 1)
		assert.Equal(t, "oracle", contracts[0].Name)
	})

	t.Run("pagination keeps the total", func(t *testing.T) {
		contracts, total, err := store.ListContracts(ctx, service.ContractFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, contracts, 1)
	})

	t.Run("zero page and size use defaults", func(t *testing.T) {
		contracts, _, err := store.ListContracts(ctx, service.ContractFilter{Page: 0, PageSize: 0})
		require.NoError(t, err)
		assert.Len(t, contracts, 3)
	})
}

func TestSQLiteStorage_Audits(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	contract := newContract("token", model.NetworkTestnet)
	require.NoError(t, store.SaveContract(ctx, contract))

	t.Run("save and get roundtrip", func(t *testing.T) {
		source := "fn transfer() {}"
		audit := newAudit(contract.ID, time.Now().UTC())
		audit.ContractSource = &source
		audit.Summary = "first pass"
		audit.OverallScore = 61.5
		require.NoError(t, store.SaveAudit(ctx, audit))

		got, err := store.GetAudit(ctx, audit.ID)
		require.NoError(t, err)
		assert.Equal(t, contract.ID, got.ContractID)
		assert.Equal(t, "alice", got.Auditor)
		assert.Equal(t, "first pass", got.Summary)
		assert.InDelta(t, 61.5, got.OverallScore, 0.001)
		require.NotNil(t, got.ContractSource)
		assert.Equal(t, source, *got.ContractSource)
	})

	t.Run("missing audit is not found", func(t *testing.T) {
		_, err := store.GetAudit(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("list is newest first and latest wins", func(t *testing.T) {
		history := newContract("history", model.NetworkTestnet)
		require.NoError(t, store.SaveContract(ctx, history))

		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		oldest := newAudit(history.ID, base)
		middle := newAudit(history.ID, base.AddDate(0, 1, 0))
		newest := newAudit(history.ID, base.AddDate(0, 2, 0))
		for _, a := range []*model.AuditRecord{middle, oldest, newest} {
			require.NoError(t, store.SaveAudit(ctx, a))
		}

		audits, err := store.ListAuditsByContract(ctx, history.ID)
		require.NoError(t, err)
		require.Len(t, audits, 3)
		assert.Equal(t, newest.ID, audits[0].ID)
		assert.Equal(t, middle.ID, audits[1].ID)
		assert.Equal(t, oldest.ID, audits[2].ID)

		latest, err := store.GetLatestAudit(ctx, history.ID)
		require.NoError(t, err)
		assert.Equal(t, newest.ID, latest.ID)
	})

	t.Run("latest audit for unaudited contract is not found", func(t *testing.T) {
		fresh := newContract("fresh", model.NetworkTestnet)
		require.NoError(t, store.SaveContract(ctx, fresh))

		_, err := store.GetLatestAudit(ctx, fresh.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("update score", func(t *testing.T) {
		audit := newAudit(contract.ID, time.Now().UTC())
		require.NoError(t, store.SaveAudit(ctx, audit))

		require.NoError(t, store.UpdateAuditScore(ctx, audit.ID, 88.25))
		got, err := store.GetAudit(ctx, audit.ID)
		require.NoError(t, err)
		assert.InDelta(t, 88.25, got.OverallScore, 0.001)

		assert.ErrorIs(t, store.UpdateAuditScore(ctx, "missing", 1), common.ErrNotFound)
	})
}

func TestSQLiteStorage_CheckRows(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	contract := newContract("token", model.NetworkTestnet)
	require.NoError(t, store.SaveContract(ctx, contract))
	audit := newAudit(contract.ID, time.Now().UTC())
	require.NoError(t, store.SaveAudit(ctx, audit))

	rows := []model.AuditCheckRow{
		newCheckRow(audit.ID, "reentrancy-001", model.CheckPending),
		newCheckRow(audit.ID, "access-control-001", model.CheckPending),
	}
	require.NoError(t, store.SaveCheckRows(ctx, rows))

	t.Run("rows come back ordered by check id", func(t *testing.T) {
		got, err := store.GetCheckRows(ctx, audit.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "access-control-001", got[0].CheckID)
		assert.Equal(t, "reentrancy-001", got[1].CheckID)
	})

	t.Run("single row lookup", func(t *testing.T) {
		got, err := store.GetCheckRow(ctx, audit.ID, "reentrancy-001")
		require.NoError(t, err)
		assert.Equal(t, model.CheckPending, got.Status)

		_, err = store.GetCheckRow(ctx, audit.ID, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("update overwrites mutable state", func(t *testing.T) {
		row, err := store.GetCheckRow(ctx, audit.ID, "reentrancy-001")
		require.NoError(t, err)

		notes := "confirmed via call graph"
		evidence := "external_call_before_state_update"
		row.Status = model.CheckFailed
		row.Notes = &notes
		row.Evidence = &evidence
		row.AutoDetected = true
		require.NoError(t, store.UpdateCheckRow(ctx, row))

		got, err := store.GetCheckRow(ctx, audit.ID, "reentrancy-001")
		require.NoError(t, err)
		assert.Equal(t, model.CheckFailed, got.Status)
		assert.True(t, got.AutoDetected)
		require.NotNil(t, got.Notes)
		assert.Equal(t, notes, *got.Notes)
		require.NotNil(t, got.Evidence)
		assert.Equal(t, evidence, *got.Evidence)
	})

	t.Run("update of unknown row is not found", func(t *testing.T) {
		ghost := newCheckRow(audit.ID, "ghost", model.CheckPassed)
		assert.ErrorIs(t, store.UpdateCheckRow(ctx, &ghost), common.ErrNotFound)
	})

	t.Run("duplicate check id in one audit is rejected", func(t *testing.T) {
		dup := newCheckRow(audit.ID, "reentrancy-001", model.CheckPending)
		assert.Error(t, store.SaveCheckRows(ctx, []model.AuditCheckRow{dup}))
	})

	t.Run("deleting the audit cascades to rows", func(t *testing.T) {
		require.NoError(t, store.DeleteAudit(ctx, audit.ID))

		got, err := store.GetCheckRows(ctx, audit.ID)
		require.NoError(t, err)
		assert.Empty(t, got)

		assert.ErrorIs(t, store.DeleteAudit(ctx, audit.ID), common.ErrNotFound)
	})
}

func TestSQLiteStorage_Transactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	contract := newContract("token", model.NetworkTestnet)
	require.NoError(t, store.SaveContract(ctx, contract))

	t.Run("rollback leaves nothing behind", func(t *testing.T) {
		audit := newAudit(contract.ID, time.Now().UTC())

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SaveAudit(ctx, audit))
		require.NoError(t, tx.Rollback())

		_, err = store.GetAudit(ctx, audit.ID)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("commit persists the audit and its rows", func(t *testing.T) {
		audit := newAudit(contract.ID, time.Now().UTC())
		rows := []model.AuditCheckRow{
			newCheckRow(audit.ID, "reentrancy-001", model.CheckPending),
		}

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.SaveAudit(ctx, audit))
		require.NoError(t, tx.SaveCheckRows(ctx, rows))
		require.NoError(t, tx.Commit())

		got, err := store.GetAudit(ctx, audit.ID)
		require.NoError(t, err)
		assert.Equal(t, audit.ID, got.ID)

		checkRows, err := store.GetCheckRows(ctx, audit.ID)
		require.NoError(t, err)
		assert.Len(t, checkRows, 1)
	})
}
