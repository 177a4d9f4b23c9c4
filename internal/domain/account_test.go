package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gobank/internal/domain"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func openTestAccount(t *testing.T, initialDeposit, dailyLimit string) *domain.Account {
	t.Helper()
	account, err := domain.OpenAccount(
		domain.NewID(),
		"ACC-1001",
		"Ada Lovelace",
		mustDecimal(t, initialDeposit),
		mustDecimal(t, dailyLimit),
	)
	require.NoError(t, err)
	return account
}

func ledgerSum(account *domain.Account) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range account.Ledger() {
		sum = sum.Add(tx.Signed())
	}
	return sum
}

func TestOpenAccount(t *testing.T) {
	tests := []struct {
		name           string
		initialDeposit string
		dailyLimit     string
		wantErr        bool
	}{
		{name: "minimum initial deposit accepted", initialDeposit: "100.00", dailyLimit: "1000.00", wantErr: false},
		{name: "one cent below minimum rejected", initialDeposit: "99.99", dailyLimit: "1000.00", wantErr: true},
		{name: "limit below range rejected", initialDeposit: "500.00", dailyLimit: "999.99", wantErr: true},
		{name: "limit above range rejected", initialDeposit: "500.00", dailyLimit: "10000.01", wantErr: true},
		{name: "limit at upper bound accepted", initialDeposit: "500.00", dailyLimit: "10000.00", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := domain.OpenAccount(
				domain.NewID(),
				"ACC-1001",
				"Ada Lovelace",
				mustDecimal(t, tt.initialDeposit),
				mustDecimal(t, tt.dailyLimit),
			)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsRuleError(err), "expected rule violation, got %v", err)
				assert.Nil(t, account)
				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance().Equal(mustDecimal(t, tt.initialDeposit)))
			assert.Len(t, account.Ledger(), 1)
			assert.Equal(t, domain.AccountStatusActive, account.Status())
			assert.Equal(t, int64(1), account.Version())
		})
	}
}

func TestOpenAccount_SeedsLedgerAndRecordsFact(t *testing.T) {
	account := openTestAccount(t, "250.00", "2000.00")

	ledger := account.Ledger()
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.TransactionDeposit, ledger[0].Kind())
	assert.True(t, ledger[0].Amount().Equal(mustDecimal(t, "250.00")))
	assert.True(t, ledger[0].BalanceAfter().Equal(mustDecimal(t, "250.00")))

	events := account.PullEvents()
	require.Len(t, events, 1)
	opened, ok := events[0].(domain.AccountOpened)
	require.True(t, ok)
	assert.Equal(t, account.ID(), opened.AccountID)
	assert.True(t, opened.InitialDeposit.Equal(mustDecimal(t, "250.00")))

	// A second pull returns nothing.
	assert.Empty(t, account.PullEvents())
}

func TestDeposit(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "one cent accepted", amount: "0.01", wantErr: false},
		{name: "below one cent rejected", amount: "0.001", wantErr: true},
		{name: "zero rejected", amount: "0", wantErr: true},
		{name: "regular amount accepted", amount: "42.50", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := openTestAccount(t, "100.00", "1000.00")
			balanceBefore := account.Balance()
			versionBefore := account.Version()

			err := account.Deposit(mustDecimal(t, tt.amount), "test deposit")

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsRuleError(err))
				assert.True(t, account.Balance().Equal(balanceBefore))
				assert.Equal(t, versionBefore, account.Version())
				assert.Len(t, account.Ledger(), 1)
				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance().Equal(balanceBefore.Add(mustDecimal(t, tt.amount))))
			assert.Equal(t, versionBefore+1, account.Version())
			assert.Len(t, account.Ledger(), 2)
			assert.True(t, account.Balance().Equal(ledgerSum(account)))
		})
	}
}

func TestWithdraw(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		dailyLimit  string
		amount      string
		wantErr     bool
		wantMessage string
	}{
		{
			name:       "covered withdrawal succeeds",
			balance:    "500.00",
			dailyLimit: "1000.00",
			amount:     "100.00",
		},
		{
			name:        "insufficient balance rejected before limit check",
			balance:     "500.00",
			dailyLimit:  "1000.00",
			amount:      "600.00",
			wantErr:     true,
			wantMessage: "insufficient balance for withdrawal",
		},
		{
			name:        "below minimum amount rejected",
			balance:     "500.00",
			dailyLimit:  "1000.00",
			amount:      "0.99",
			wantErr:     true,
			wantMessage: "minimum withdrawal amount is $1.00",
		},
		{
			name:        "amount above daily limit rejected while balance covers it",
			balance:     "5000.00",
			dailyLimit:  "1000.00",
			amount:      "1500.00",
			wantErr:     true,
			wantMessage: "withdrawal would exceed daily limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := openTestAccount(t, tt.balance, tt.dailyLimit)
			versionBefore := account.Version()
			balanceBefore := account.Balance()
			withdrawnBefore := account.TotalWithdrawnToday()

			err := account.Withdraw(mustDecimal(t, tt.amount), "test withdrawal")

			if tt.wantErr {
				require.Error(t, err)
				var ruleErr *domain.RuleError
				require.ErrorAs(t, err, &ruleErr)
				assert.Equal(t, tt.wantMessage, ruleErr.Message)
				assert.True(t, account.Balance().Equal(balanceBefore))
				assert.True(t, account.TotalWithdrawnToday().Equal(withdrawnBefore))
				assert.Equal(t, versionBefore, account.Version())
				return
			}

			require.NoError(t, err)
			assert.True(t, account.Balance().Equal(balanceBefore.Sub(mustDecimal(t, tt.amount))))
			assert.True(t, account.TotalWithdrawnToday().Equal(mustDecimal(t, tt.amount)))
			assert.Equal(t, versionBefore+1, account.Version())
			assert.True(t, account.Balance().Equal(ledgerSum(account)))
		})
	}
}

func TestWithdraw_DailyLimitAccumulates(t *testing.T) {
	// Balance is large enough that only the daily limit can reject.
	account := openTestAccount(t, "5000.00", "1000.00")

	require.NoError(t, account.Withdraw(mustDecimal(t, "400.00"), "first"))
	require.NoError(t, account.Withdraw(mustDecimal(t, "400.00"), "second"))

	err := account.Withdraw(mustDecimal(t, "300.00"), "third")
	require.Error(t, err)
	var ruleErr *domain.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "withdrawal would exceed daily limit", ruleErr.Message)

	// Rejected withdrawal leaves everything unchanged.
	assert.True(t, account.Balance().Equal(mustDecimal(t, "4200.00")))
	assert.True(t, account.TotalWithdrawnToday().Equal(mustDecimal(t, "800.00")))
	assert.Equal(t, int64(3), account.Version())

	// Exactly reaching the limit is still allowed.
	require.NoError(t, account.Withdraw(mustDecimal(t, "200.00"), "fourth"))
	assert.True(t, account.TotalWithdrawnToday().Equal(mustDecimal(t, "1000.00")))
}

func TestFreeze(t *testing.T) {
	account := openTestAccount(t, "500.00", "1000.00")
	versionBefore := account.Version()
	account.PullEvents()

	require.NoError(t, account.Freeze())
	assert.Equal(t, domain.AccountStatusFrozen, account.Status())
	assert.Equal(t, versionBefore+1, account.Version())

	events := account.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeAccountFrozen, events[0].EventType())

	// Freezing twice fails instead of silently succeeding.
	err := account.Freeze()
	require.Error(t, err)
	assert.True(t, domain.IsRuleError(err))
	assert.Equal(t, versionBefore+1, account.Version())
}

func TestFrozenAccountRejectsOperations(t *testing.T) {
	account := openTestAccount(t, "500.00", "1000.00")
	require.NoError(t, account.Freeze())

	balanceBefore := account.Balance()
	versionBefore := account.Version()

	err := account.Deposit(mustDecimal(t, "10.00"), "blocked")
	require.Error(t, err)
	assert.True(t, domain.IsRuleError(err))

	err = account.Withdraw(mustDecimal(t, "10.00"), "blocked")
	require.Error(t, err)
	assert.True(t, domain.IsRuleError(err))

	assert.True(t, account.Balance().Equal(balanceBefore))
	assert.Equal(t, versionBefore, account.Version())
	assert.Len(t, account.Ledger(), 1)
}

func TestBalanceMatchesLedgerAfterEveryOperation(t *testing.T) {
	account := openTestAccount(t, "1000.00", "5000.00")

	steps := []struct {
		withdraw bool
		amount   string
	}{
		{withdraw: false, amount: "250.00"},
		{withdraw: true, amount: "100.00"},
		{withdraw: false, amount: "0.01"},
		{withdraw: true, amount: "999.99"},
		{withdraw: false, amount: "42.42"},
	}

	for i, step := range steps {
		var err error
		if step.withdraw {
			err = account.Withdraw(mustDecimal(t, step.amount), "step")
		} else {
			err = account.Deposit(mustDecimal(t, step.amount), "step")
		}
		require.NoError(t, err, "step %d", i)

		assert.True(t, account.Balance().Equal(ledgerSum(account)), "step %d: balance drifted from ledger", i)
		assert.False(t, account.Balance().IsNegative(), "step %d: balance went negative", i)
		assert.Equal(t, int64(i+2), account.Version(), "step %d", i)
	}

	assert.Len(t, account.Ledger(), len(steps)+1)
}

func TestLedgerViewIsACopy(t *testing.T) {
	account := openTestAccount(t, "100.00", "1000.00")

	ledger := account.Ledger()
	require.Len(t, ledger, 1)
	ledger[0] = domain.Transaction{}

	// Mutating the returned slice must not corrupt the aggregate.
	require.NoError(t, account.CheckInvariants())
	assert.Equal(t, domain.TransactionDeposit, account.Ledger()[0].Kind())
}

func TestReconstructAccount(t *testing.T) {
	original := openTestAccount(t, "300.00", "2000.00")
	require.NoError(t, original.Withdraw(mustDecimal(t, "50.00"), "groceries"))

	restored, err := domain.ReconstructAccount(original.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, original.ID(), restored.ID())
	assert.True(t, restored.Balance().Equal(original.Balance()))
	assert.Equal(t, original.Version(), restored.Version())
	assert.Equal(t, original.Status(), restored.Status())
	assert.Len(t, restored.Ledger(), 2)
	assert.True(t, restored.TotalWithdrawnToday().Equal(mustDecimal(t, "50.00")))

	// Reconstruction restores state verbatim and is ready for mutations.
	require.NoError(t, restored.Deposit(mustDecimal(t, "10.00"), "follow-up"))
	assert.Equal(t, original.Version()+1, restored.Version())
}

func TestReconstructAccount_BypassesCreationRules(t *testing.T) {
	// A balance below the minimum initial deposit is a legal persisted
	// state (the account was drawn down), so reconstruction must accept it.
	account := openTestAccount(t, "100.00", "1000.00")
	require.NoError(t, account.Withdraw(mustDecimal(t, "95.00"), "almost everything"))

	restored, err := domain.ReconstructAccount(account.Snapshot())
	require.NoError(t, err)
	assert.True(t, restored.Balance().Equal(mustDecimal(t, "5.00")))
}

func TestReconstructAccount_CorruptSnapshotFailsAtLoad(t *testing.T) {
	account := openTestAccount(t, "300.00", "2000.00")

	t.Run("balance does not match ledger", func(t *testing.T) {
		snapshot := account.Snapshot()
		snapshot.Balance = mustDecimal(t, "999.00")

		restored, err := domain.ReconstructAccount(snapshot)
		require.Error(t, err)
		assert.True(t, domain.IsInvariantError(err))
		assert.Nil(t, restored)
	})

	t.Run("withdrawn total above limit", func(t *testing.T) {
		snapshot := account.Snapshot()
		snapshot.TotalWithdrawnToday = mustDecimal(t, "2000.01")

		restored, err := domain.ReconstructAccount(snapshot)
		require.Error(t, err)
		assert.True(t, domain.IsInvariantError(err))
		assert.Nil(t, restored)
	})
}

func TestTransactionSigned(t *testing.T) {
	account := openTestAccount(t, "200.00", "1000.00")
	require.NoError(t, account.Withdraw(mustDecimal(t, "75.00"), "signed check"))

	ledger := account.Ledger()
	require.Len(t, ledger, 2)
	assert.True(t, ledger[0].Signed().Equal(mustDecimal(t, "200.00")))
	assert.True(t, ledger[1].Signed().Equal(mustDecimal(t, "-75.00")))
	assert.True(t, ledger[1].Amount().IsPositive())
}
