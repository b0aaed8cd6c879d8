package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	paginationpkg "github.com/yazbox/yazbox-backend/pkg/pagination"
)

type fakeRepository struct {
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	countFn       func(ctx context.Context, userID uuid.UUID) (int64, error)
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error)
	markAllReadFn func(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if f.countFn != nil {
		return f.countFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, userID, notificationID, now)
	}
	return notificationMarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, userID, now)
	}
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.Limit != 1 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}, nil
		},
	}

	svc := newServiceWithRepo(repo)
	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected cursor for next page")
	}
	decoded, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}
	if decoded.ID != second.ID {
		t.Fatalf("expected cursor id %s, got %s", second.ID, decoded.ID)
	}
}

func TestService_ListRequiresUser(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_ListRejectsBadCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_MarkRead(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	t.Run("marksUnread", func(t *testing.T) {
		repo := &fakeRepository{
			markReadFn: func(ctx context.Context, gotUser, gotNotification uuid.UUID, now time.Time) (notificationMarkResult, error) {
				if gotUser != userID || gotNotification != notificationID {
					t.Fatalf("unexpected ids %s %s", gotUser, gotNotification)
				}
				return notificationMarkResult{Updated: true, Found: true}, nil
			},
		}
		if err := newServiceWithRepo(repo).MarkRead(context.Background(), userID, notificationID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("alreadyReadIsNoop", func(t *testing.T) {
		repo := &fakeRepository{
			markReadFn: func(ctx context.Context, _, _ uuid.UUID, _ time.Time) (notificationMarkResult, error) {
				return notificationMarkResult{Updated: false, Found: true}, nil
			},
		}
		if err := newServiceWithRepo(repo).MarkRead(context.Background(), userID, notificationID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missingNotification", func(t *testing.T) {
		repo := &fakeRepository{
			markReadFn: func(ctx context.Context, _, _ uuid.UUID, _ time.Time) (notificationMarkResult, error) {
				return notificationMarkResult{}, nil
			},
		}
		err := newServiceWithRepo(repo).MarkRead(context.Background(), userID, notificationID)
		if !pkgerrors.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("repoFailure", func(t *testing.T) {
		repo := &fakeRepository{
			markReadFn: func(ctx context.Context, _, _ uuid.UUID, _ time.Time) (notificationMarkResult, error) {
				return notificationMarkResult{}, errors.New("db down")
			},
		}
		err := newServiceWithRepo(repo).MarkRead(context.Background(), userID, notificationID)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})
}

func TestService_MarkAllRead(t *testing.T) {
	userID := uuid.New()
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, gotUser uuid.UUID, _ time.Time) (int64, error) {
			if gotUser != userID {
				t.Fatalf("unexpected user %s", gotUser)
			}
			return 4, nil
		},
	}
	updated, err := newServiceWithRepo(repo).MarkAllRead(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 4 {
		t.Fatalf("expected 4 updates, got %d", updated)
	}
}

func TestService_UnreadCount(t *testing.T) {
	repo := &fakeRepository{
		countFn: func(ctx context.Context, _ uuid.UUID) (int64, error) {
			return 7, nil
		},
	}
	count, err := newServiceWithRepo(repo).UnreadCount(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}
