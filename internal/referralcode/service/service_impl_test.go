package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/coworklabs/perks/internal/clock"
	"github.com/coworklabs/perks/internal/providers/directory"
	"github.com/coworklabs/perks/internal/referralcode/domain"
	"github.com/coworklabs/perks/internal/referralcode/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type directoryStub struct {
	mu      sync.Mutex
	updates map[string]directory.MemberUpdate
	err     error
}

func newDirectoryStub() *directoryStub {
	return &directoryStub{updates: map[string]directory.MemberUpdate{}}
}

func (d *directoryStub) GetMember(ctx context.Context, id string) (*directory.Member, error) {
	return &directory.Member{ID: id}, nil
}

func (d *directoryStub) UpdateMember(ctx context.Context, id string, update directory.MemberUpdate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.updates[id] = update
	return nil
}

func (d *directoryStub) AddNewFee(ctx context.Context, req directory.NewFeeRequest) (string, error) {
	return "fee-1", nil
}

func setupCodeService(t *testing.T) (*Service, *gorm.DB, *directoryStub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.ReferralCode{}, &domain.ReferredUser{}))

	dir := newDirectoryStub()
	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Repo:      repository.Provide(),
		Directory: dir,
		Clock:     clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}).(*Service)

	return svc, db, dir
}

func TestCreateReferralCode(t *testing.T) {
	svc, db, dir := setupCodeService(t)
	companyID := "company-9"

	code, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:        "member-1",
		OwnerCompanyID: &companyID,
		OwnerType:      domain.OwnerTypeBusiness,
	})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), code.Code)
	assert.Equal(t, "member-1", code.OwnerID)
	assert.Equal(t, domain.OwnerTypeBusiness, code.OwnerType)
	assert.Zero(t, code.TotalReferred)
	assert.Zero(t, code.TotalConverted)

	var stored domain.ReferralCode
	require.NoError(t, db.First(&stored, "code = ?", code.Code).Error)
	assert.Equal(t, code.OwnerID, stored.OwnerID)

	update, ok := dir.updates["member-1"]
	require.True(t, ok, "directory record should carry the issued code")
	require.NotNil(t, update.ReferralOwnCode)
	assert.Equal(t, code.Code, *update.ReferralOwnCode)
}

func TestCreateReferralCodeRegeneratesOnCollision(t *testing.T) {
	svc, db, _ := setupCodeService(t)

	seed, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-1",
		OwnerType: domain.OwnerTypeMember,
	})
	require.NoError(t, err)

	attempts := 0
	svc.newCode = func() (string, error) {
		attempts++
		if attempts == 1 {
			return seed.Code, nil
		}
		return "ZZZZ99", nil
	}

	code, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-2",
		OwnerType: domain.OwnerTypeMember,
	})
	require.NoError(t, err)

	assert.Equal(t, "ZZZZ99", code.Code)
	assert.Equal(t, 2, attempts, "one collision should consume exactly one extra attempt")

	var count int64
	require.NoError(t, db.Model(&domain.ReferralCode{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestCreateReferralCodeExhaustsRetries(t *testing.T) {
	svc, _, _ := setupCodeService(t)

	seed, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-1",
		OwnerType: domain.OwnerTypeMember,
	})
	require.NoError(t, err)

	attempts := 0
	svc.newCode = func() (string, error) {
		attempts++
		return seed.Code, nil
	}

	_, err = svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-2",
		OwnerType: domain.OwnerTypeMember,
	})
	require.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Equal(t, 10, attempts)
}

func TestCreateReferralCodeDirectoryFailureDoesNotFail(t *testing.T) {
	svc, _, dir := setupCodeService(t)
	dir.err = assert.AnError

	code, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-1",
		OwnerType: domain.OwnerTypeMember,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, code.Code)
}

func TestCreateReferralCodeValidation(t *testing.T) {
	svc, _, _ := setupCodeService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "  ",
		OwnerType: domain.OwnerTypeMember,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOwner)

	_, err = svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-1",
		OwnerType: "franchise",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOwnerType)
}

func TestGetByCodeNormalizesInput(t *testing.T) {
	svc, _, _ := setupCodeService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		OwnerID:   "member-1",
		OwnerType: domain.OwnerTypeMember,
	})
	require.NoError(t, err)

	found, err := svc.GetByCode(context.Background(), "  "+created.Code+" ")
	require.NoError(t, err)
	assert.Equal(t, created.Code, found.Code)

	_, err = svc.GetByCode(context.Background(), "NOPE00")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
