package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/internal/event"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
	pkgkafka "github.com/anderovsky/ITStep-zrucnosti/pkg/kafka"
)

// --- Mock Account Repository ---

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = 1
	}
	return args.Error(0)
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *mockAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- Mock Listing Repository ---

type mockListingRepository struct {
	mock.Mock
}

func (m *mockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	if args.Error(0) == nil {
		listing.ID = 7
	}
	return args.Error(0)
}

func (m *mockListingRepository) GetByID(ctx context.Context, id int64) (*domain.ListingDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ListingDetail), args.Error(1)
}

func (m *mockListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *mockListingRepository) Search(ctx context.Context, query string) ([]domain.Listing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	if args.Error(0) == nil {
		review.ID = 3
	}
	return args.Error(0)
}

func (m *mockReviewRepository) ListByListingID(ctx context.Context, listingID int64) ([]domain.ReviewDetail, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewDetail), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(h)
}

func sampleDetail() *domain.ListingDetail {
	return &domain.ListingDetail{
		Listing: domain.Listing{
			ID:          7,
			Title:       "Guitar lessons",
			Description: "One hour of beginner guitar tuition.",
			Price:       decimal.RequireFromString("25.00"),
			AccountID:   1,
		},
		SellerUsername: "mira",
	}
}

// --- AccountService ---

func TestAccountService_Register_Success(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).Return(nil)

	account, err := svc.Register(ctx, RegisterInput{Username: "mira", Password: "hunter22"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, "mira", account.Username)
	assert.NotEqual(t, "hunter22", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("hunter22")))

	repo.AssertExpectations(t)
}

func TestAccountService_Register_DuplicateUsername(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Account")).
		Return(apperrors.AlreadyExists("account", "username", "mira"))

	account, err := svc.Register(ctx, RegisterInput{Username: "mira", Password: "hunter22"})

	assert.Nil(t, account)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	repo.AssertExpectations(t)
}

func TestAccountService_Register_EmptyUsername(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())

	account, err := svc.Register(context.Background(), RegisterInput{Username: "", Password: "hunter22"})

	assert.Nil(t, account)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestAccountService_Register_EmptyPassword(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())

	account, err := svc.Register(context.Background(), RegisterInput{Username: "mira", Password: ""})

	assert.Nil(t, account)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestAccountService_Login_Success(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	stored := &domain.Account{ID: 1, Username: "mira", PasswordHash: hashForTest("hunter22")}
	repo.On("GetByUsername", ctx, "mira").Return(stored, nil)

	account, err := svc.Login(ctx, LoginInput{Username: "mira", Password: "hunter22"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	repo.AssertExpectations(t)
}

func TestAccountService_Login_UnknownUsername(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("GetByUsername", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	account, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "whatever"})

	assert.Nil(t, account)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	// The message must not reveal whether the account exists.
	assert.Contains(t, err.Error(), "invalid username or password")
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	repo := new(mockAccountRepository)
	svc := NewAccountService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	stored := &domain.Account{ID: 1, Username: "mira", PasswordHash: hashForTest("hunter22")}
	repo.On("GetByUsername", ctx, "mira").Return(stored, nil)

	account, err := svc.Login(ctx, LoginInput{Username: "mira", Password: "wrong"})

	assert.Nil(t, account)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid username or password")
}

// --- ListingService ---

func TestListingService_Create_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Listing")).Return(nil)

	listing, err := svc.Create(ctx, CreateListingInput{
		Title:       "Guitar lessons",
		Description: "One hour of beginner guitar tuition.",
		Price:       "25.00",
		AccountID:   1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), listing.ID)
	assert.True(t, decimal.RequireFromString("25.00").Equal(listing.Price))
	assert.False(t, listing.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestListingService_Create_MalformedPrice(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())

	listing, err := svc.Create(context.Background(), CreateListingInput{
		Title:       "Guitar lessons",
		Description: "desc",
		Price:       "abc",
		AccountID:   1,
	})

	assert.Nil(t, listing)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestListingService_Create_NegativePrice(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())

	listing, err := svc.Create(context.Background(), CreateListingInput{
		Title:       "Guitar lessons",
		Description: "desc",
		Price:       "-5",
		AccountID:   1,
	})

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListingService_Create_TooManyDecimalPlaces(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())

	listing, err := svc.Create(context.Background(), CreateListingInput{
		Title:       "Guitar lessons",
		Description: "desc",
		Price:       "9.999",
		AccountID:   1,
	})

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListingService_Create_MissingTitle(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())

	listing, err := svc.Create(context.Background(), CreateListingInput{
		Description: "desc",
		Price:       "10",
		AccountID:   1,
	})

	assert.Nil(t, listing)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

func TestListingService_Browse_All(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("List", ctx).Return([]domain.Listing{sampleDetail().Listing}, nil)

	listings, err := svc.Browse(ctx, "")

	require.NoError(t, err)
	assert.Len(t, listings, 1)
	repo.AssertNotCalled(t, "Search")
}

func TestListingService_Browse_WithQuery(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("Search", ctx, "guitar").Return([]domain.Listing{sampleDetail().Listing}, nil)

	listings, err := svc.Browse(ctx, "guitar")

	require.NoError(t, err)
	assert.Len(t, listings, 1)
	repo.AssertNotCalled(t, "List")
}

func TestListingService_GetDetail_Success(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(7)).Return(sampleDetail(), nil)

	detail, err := svc.GetDetail(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, "Guitar lessons", detail.Title)
	assert.Equal(t, "mira", detail.SellerUsername)
}

func TestListingService_GetDetail_NotFound(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(99)).Return(nil, apperrors.NotFound("listing", "99"))

	detail, err := svc.GetDetail(ctx, 99)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListingService_GetDetail_NonPositiveID(t *testing.T) {
	repo := new(mockListingRepository)
	svc := NewListingService(repo, newTestEventProducer(), newTestLogger())

	detail, err := svc.GetDetail(context.Background(), 0)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "GetByID")
}

// --- ReviewService ---

func newTestReviewService(reviewRepo *mockReviewRepository, listingRepo *mockListingRepository) *ReviewService {
	return NewReviewService(reviewRepo, listingRepo, newTestEventProducer(), newTestLogger())
}

func TestReviewService_Create_Success(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	listingRepo := new(mockListingRepository)
	svc := newTestReviewService(reviewRepo, listingRepo)
	ctx := context.Background()

	listingRepo.On("GetByID", ctx, int64(7)).Return(sampleDetail(), nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.Create(ctx, CreateReviewInput{
		ListingID: 7,
		AccountID: 2,
		Content:   "Great teacher, learned a lot.",
		Rating:    5,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), review.ID)
	assert.Equal(t, 5, review.Rating)
	assert.False(t, review.CreatedAt.IsZero())
	reviewRepo.AssertExpectations(t)
	listingRepo.AssertExpectations(t)
}

func TestReviewService_Create_RatingOutOfRange(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	listingRepo := new(mockListingRepository)
	svc := newTestReviewService(reviewRepo, listingRepo)

	for _, rating := range []int{0, 6, -1} {
		review, err := svc.Create(context.Background(), CreateReviewInput{
			ListingID: 7,
			AccountID: 2,
			Content:   "text",
			Rating:    rating,
		})

		assert.Nil(t, review)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	reviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewService_Create_EmptyContent(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	listingRepo := new(mockListingRepository)
	svc := newTestReviewService(reviewRepo, listingRepo)

	review, err := svc.Create(context.Background(), CreateReviewInput{
		ListingID: 7,
		AccountID: 2,
		Content:   "",
		Rating:    4,
	})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	reviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewService_Create_ListingNotFound(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	listingRepo := new(mockListingRepository)
	svc := newTestReviewService(reviewRepo, listingRepo)
	ctx := context.Background()

	listingRepo.On("GetByID", ctx, int64(99)).Return(nil, apperrors.NotFound("listing", "99"))

	review, err := svc.Create(ctx, CreateReviewInput{
		ListingID: 99,
		AccountID: 2,
		Content:   "text",
		Rating:    4,
	})

	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	reviewRepo.AssertNotCalled(t, "Create")
}

func TestReviewService_ListForListing(t *testing.T) {
	reviewRepo := new(mockReviewRepository)
	listingRepo := new(mockListingRepository)
	svc := newTestReviewService(reviewRepo, listingRepo)
	ctx := context.Background()

	reviews := []domain.ReviewDetail{
		{Review: domain.Review{ID: 3, Content: "Great", Rating: 5, ListingID: 7}, AuthorUsername: "tomas"},
	}
	reviewRepo.On("ListByListingID", ctx, int64(7)).Return(reviews, nil)

	got, err := svc.ListForListing(ctx, 7)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tomas", got[0].AuthorUsername)
}
