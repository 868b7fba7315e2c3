package accounts

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByPhone(ctx context.Context, phone string) (User, error)
	ListAll(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int64, error)

	GetVendorProfile(ctx context.Context, userID string) (VendorProfile, error)
	SaveVendorProfile(ctx context.Context, p VendorProfile) error

	GetGuestByEmail(ctx context.Context, email string) (GuestProfile, error)
	SaveGuest(ctx context.Context, g GuestProfile) error
}
