package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/config"
	"github.com/coworklabs/perks/internal/providers/directory"
	referraldomain "github.com/coworklabs/perks/internal/referral/domain"
	codedomain "github.com/coworklabs/perks/internal/referralcode/domain"
	"github.com/coworklabs/perks/internal/reward/domain"
	"github.com/coworklabs/perks/internal/reward/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// feeRecorder captures AddNewFee calls and fails for configured members.
type feeRecorder struct {
	fees    []directory.NewFeeRequest
	failFor map[string]error
}

func (f *feeRecorder) GetMember(ctx context.Context, id string) (*directory.Member, error) {
	return &directory.Member{ID: id}, nil
}

func (f *feeRecorder) UpdateMember(ctx context.Context, id string, update directory.MemberUpdate) error {
	return nil
}

func (f *feeRecorder) AddNewFee(ctx context.Context, req directory.NewFeeRequest) (string, error) {
	if err, ok := f.failFor[req.MemberID]; ok {
		return "", err
	}
	f.fees = append(f.fees, req)
	return "fee-" + req.MemberID, nil
}

type transferRecorder struct {
	transfers []float64
	err       error
}

func (b *transferRecorder) IssueTransfer(ctx context.Context, payeeID string, amountEur float64) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.transfers = append(b.transfers, amountEur)
	return "transfer-" + payeeID, nil
}

type rewardFixture struct {
	db       *gorm.DB
	svc      *Service
	clock    *clock.FakeClock
	dir      *feeRecorder
	transfer *transferRecorder
	genID    *snowflake.Node
}

func setupRewardService(t *testing.T) *rewardFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Reward{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	dir := &feeRecorder{failFor: map[string]error{}}
	transfer := &transferRecorder{}

	svc := NewService(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Repo:         repository.Provide(),
		Directory:    dir,
		BankTransfer: transfer,
		Clock:        fc,
		Cfg: config.Config{
			Directory: config.DirectoryConfig{
				FeeName:   "Referral reward credit",
				FeePlanID: "plan-referral",
			},
		},
	}).(*Service)

	return &rewardFixture{
		db:       db,
		svc:      svc,
		clock:    fc,
		dir:      dir,
		transfer: transfer,
		genID:    node,
	}
}

func (f *rewardFixture) seedReward(t *testing.T, referrerID string, amount float64, due time.Time, status domain.RewardStatus, channel domain.PayoutChannel) domain.Reward {
	t.Helper()
	now := f.clock.Now()
	reward := domain.Reward{
		ID:            f.genID.Generate(),
		ReferralID:    f.genID.Generate(),
		ReferrerID:    referrerID,
		ReferrerType:  codedomain.OwnerTypeMember,
		AmountEur:     amount,
		DueDate:       due,
		Status:        status,
		PayoutChannel: channel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(&reward).Error)
	return reward
}

func (f *rewardFixture) reload(t *testing.T, id snowflake.ID) domain.Reward {
	t.Helper()
	var reward domain.Reward
	require.NoError(t, f.db.First(&reward, "id = ?", id).Error)
	return reward
}

func convertedReferral(f *rewardFixture, referrerType codedomain.OwnerType, value float64) *referraldomain.Referral {
	return &referraldomain.Referral{
		ID:                f.genID.Generate(),
		ReferrerID:        "referrer-1",
		ReferrerType:      referrerType,
		ReferredUserID:    "user-1",
		ReferralCode:      "AAAAAA",
		SubscriptionValue: &value,
		Status:            referraldomain.StatusConverted,
	}
}

func TestCreateForConversionMemberSchedule(t *testing.T) {
	f := setupRewardService(t)

	rewards, err := f.svc.CreateForConversion(context.Background(), convertedReferral(f, codedomain.OwnerTypeMember, 100))
	require.NoError(t, err)
	require.Len(t, rewards, 1)

	assert.Equal(t, 50.0, rewards[0].AmountEur)
	assert.Equal(t, domain.RewardStatusScheduled, rewards[0].Status)
	assert.Equal(t, domain.ChannelMemberCredit, rewards[0].PayoutChannel)
	assert.True(t, rewards[0].DueDate.Equal(f.clock.Now()))

	var count int64
	require.NoError(t, f.db.Model(&domain.Reward{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateForConversionBusinessSchedule(t *testing.T) {
	f := setupRewardService(t)

	rewards, err := f.svc.CreateForConversion(context.Background(), convertedReferral(f, codedomain.OwnerTypeBusiness, 200))
	require.NoError(t, err)
	require.Len(t, rewards, 3)

	now := f.clock.Now()
	assert.Equal(t, 40.0, rewards[0].AmountEur)
	assert.True(t, rewards[0].DueDate.Equal(now))
	assert.Equal(t, 20.0, rewards[1].AmountEur)
	assert.True(t, rewards[1].DueDate.Equal(now.AddDate(0, 0, 30)))
	assert.Equal(t, 10.0, rewards[2].AmountEur)
	assert.True(t, rewards[2].DueDate.Equal(now.AddDate(0, 0, 60)))
}

func TestCreateForConversionIgnoresNonConverted(t *testing.T) {
	f := setupRewardService(t)

	referral := convertedReferral(f, codedomain.OwnerTypeMember, 100)
	referral.Status = referraldomain.StatusAwaitingPayment

	rewards, err := f.svc.CreateForConversion(context.Background(), referral)
	require.NoError(t, err)
	assert.Empty(t, rewards)

	var count int64
	require.NoError(t, f.db.Model(&domain.Reward{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateForConversionInvalidSubscriptionValue(t *testing.T) {
	f := setupRewardService(t)

	referral := convertedReferral(f, codedomain.OwnerTypeMember, 100)
	referral.SubscriptionValue = nil
	_, err := f.svc.CreateForConversion(context.Background(), referral)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionValue)

	zero := 0.0
	referral.SubscriptionValue = &zero
	_, err = f.svc.CreateForConversion(context.Background(), referral)
	assert.ErrorIs(t, err, domain.ErrInvalidSubscriptionValue)
}

func TestProcessDueSettlesDueRewards(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()

	due := f.seedReward(t, "member-1", 50, now.Add(-time.Hour), domain.RewardStatusScheduled, domain.ChannelMemberCredit)
	future := f.seedReward(t, "member-1", 25, now.AddDate(0, 0, 30), domain.RewardStatusScheduled, domain.ChannelMemberCredit)

	require.NoError(t, f.svc.ProcessDue(context.Background()))

	settled := f.reload(t, due.ID)
	assert.Equal(t, domain.RewardStatusPaid, settled.Status)
	require.NotNil(t, settled.PaidAt)
	assert.Nil(t, settled.LastError)

	// Not yet due; a later pass picks it up.
	assert.Equal(t, domain.RewardStatusScheduled, f.reload(t, future.ID).Status)

	require.Len(t, f.dir.fees, 1)
	fee := f.dir.fees[0]
	assert.Equal(t, "member-1", fee.MemberID)
	assert.Equal(t, 50.0, fee.Price)
	assert.Equal(t, "Referral reward credit", fee.FeeName)
	assert.Equal(t, "plan-referral", fee.PlanID)
}

func TestProcessDueIsolatesFailures(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()
	f.dir.failFor["member-bad"] = errors.New("directory rejected fee")

	bad := f.seedReward(t, "member-bad", 50, now.Add(-time.Hour), domain.RewardStatusScheduled, domain.ChannelMemberCredit)
	good := f.seedReward(t, "member-good", 30, now.Add(-time.Hour), domain.RewardStatusScheduled, domain.ChannelMemberCredit)

	require.NoError(t, f.svc.ProcessDue(context.Background()))

	failed := f.reload(t, bad.ID)
	assert.Equal(t, domain.RewardStatusFailed, failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "directory rejected fee")
	assert.Nil(t, failed.PaidAt)

	assert.Equal(t, domain.RewardStatusPaid, f.reload(t, good.ID).Status)
}

func TestProcessDueBankTransferChannel(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()

	reward := f.seedReward(t, "member-1", 75, now, domain.RewardStatusScheduled, domain.ChannelBankTransfer)

	require.NoError(t, f.svc.ProcessDue(context.Background()))

	assert.Equal(t, domain.RewardStatusPaid, f.reload(t, reward.ID).Status)
	require.Len(t, f.transfer.transfers, 1)
	assert.Equal(t, 75.0, f.transfer.transfers[0])
	assert.Empty(t, f.dir.fees)
}

func TestProcessDueManualChannelFails(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()

	reward := f.seedReward(t, "member-1", 75, now, domain.RewardStatusScheduled, domain.ChannelManual)

	require.NoError(t, f.svc.ProcessDue(context.Background()))

	failed := f.reload(t, reward.ID)
	assert.Equal(t, domain.RewardStatusFailed, failed.Status)
	require.NotNil(t, failed.LastError)
	assert.Contains(t, *failed.LastError, "unknown_payout_channel")
}

func TestProcessDueSkipsTerminalStates(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()

	failed := f.seedReward(t, "member-1", 50, now.Add(-time.Hour), domain.RewardStatusFailed, domain.ChannelMemberCredit)
	void := f.seedReward(t, "member-1", 25, now.Add(-time.Hour), domain.RewardStatusVoid, domain.ChannelMemberCredit)

	require.NoError(t, f.svc.ProcessDue(context.Background()))

	// Terminal rewards are never picked up again, FAILED included.
	assert.Equal(t, domain.RewardStatusFailed, f.reload(t, failed.ID).Status)
	assert.Equal(t, domain.RewardStatusVoid, f.reload(t, void.ID).Status)
	assert.Empty(t, f.dir.fees)
}

func TestVoidFutureVoidsOnlyScheduled(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()
	referralID := f.genID.Generate()

	paidAt := now.Add(-time.Hour)
	paid := domain.Reward{
		ID:            f.genID.Generate(),
		ReferralID:    referralID,
		ReferrerID:    "member-1",
		ReferrerType:  codedomain.OwnerTypeMember,
		AmountEur:     40,
		DueDate:       now.Add(-time.Hour),
		Status:        domain.RewardStatusPaid,
		PaidAt:        &paidAt,
		PayoutChannel: domain.ChannelMemberCredit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(&paid).Error)

	scheduled := domain.Reward{
		ID:            f.genID.Generate(),
		ReferralID:    referralID,
		ReferrerID:    "member-1",
		ReferrerType:  codedomain.OwnerTypeMember,
		AmountEur:     20,
		DueDate:       now.AddDate(0, 0, 30),
		Status:        domain.RewardStatusScheduled,
		PayoutChannel: domain.ChannelMemberCredit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(&scheduled).Error)

	other := f.seedReward(t, "member-2", 10, now.AddDate(0, 0, 30), domain.RewardStatusScheduled, domain.ChannelMemberCredit)

	require.NoError(t, f.svc.VoidFuture(context.Background(), referralID))

	assert.Equal(t, domain.RewardStatusPaid, f.reload(t, paid.ID).Status)
	assert.Equal(t, domain.RewardStatusVoid, f.reload(t, scheduled.ID).Status)
	assert.Equal(t, domain.RewardStatusScheduled, f.reload(t, other.ID).Status)
}

func TestListByReferral(t *testing.T) {
	f := setupRewardService(t)
	now := f.clock.Now()

	referral := convertedReferral(f, codedomain.OwnerTypeBusiness, 200)
	created, err := f.svc.CreateForConversion(context.Background(), referral)
	require.NoError(t, err)
	require.Len(t, created, 3)

	f.seedReward(t, "member-2", 10, now, domain.RewardStatusScheduled, domain.ChannelMemberCredit)

	listed, err := f.svc.ListByReferral(context.Background(), referral.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}
