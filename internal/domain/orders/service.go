package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"petkimlik/internal/domain/accounts"
	"petkimlik/internal/domain/addresses"
	"petkimlik/internal/domain/cart"
	"petkimlik/internal/domain/catalog"
	"petkimlik/internal/domain/shopcards"
	"petkimlik/internal/ports/auth"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("order not found")
	ErrForbidden       = errors.New("forbidden")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOutOfStock      = errors.New("some items are out of stock")
	ErrInvalidShipping = errors.New("invalid shipping address")
	ErrShopCard        = errors.New("shop card cannot be used")
	ErrNotCancellable  = errors.New("order cannot be cancelled")
	ErrBadTransition   = errors.New("invalid status transition")
	ErrNumberTaken     = errors.New("order number collision")
)

const (
	numberAlphabet   = "23456789ABCDEFGHJKMNPQRSTVWXYZ"
	DefaultAdminPage = 50
	MaxAdminPage     = 200
)

type CartReader interface {
	View(ctx context.Context, items map[string]int) (cart.View, error)
	Clear(ctx context.Context, b cart.Bucket) error
}

type AddressBook interface {
	Get(ctx context.Context, userID, id string) (addresses.Address, error)
}

type LocationNamer interface {
	ValidatePair(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) error
	Names(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) (province, district, neighborhood string, err error)
}

type GuestDirectory interface {
	FindOrCreateGuest(ctx context.Context, fullName, email, phone string) (accounts.GuestProfile, error)
}

type CardQuoter interface {
	Quote(ctx context.Context, code string, totalKurus int64) (shopcards.ShopCard, int64, error)
}

type Deps struct {
	Carts     CartReader
	Addresses AddressBook
	Locations LocationNamer
	Guests    GuestDirectory
	Cards     CardQuoter
}

type Service struct {
	repo Repository
	deps Deps
	now  func() time.Time
}

func NewService(repo Repository, deps Deps) *Service {
	return &Service{repo: repo, deps: deps, now: time.Now}
}

type GuestContact struct {
	FullName string
	Email    string
	Phone    string
}

type ShippingInput struct {
	FullName       string
	Phone          string
	ProvinceID     int64
	DistrictID     int64
	NeighborhoodID *int64
	Line           string
	PostalCode     string
}

// CheckoutInput: UserID vacío = checkout de invitado (Guest obligatorio).
// AddressID solo para usuarios; si no, Shipping inline.
type CheckoutInput struct {
	UserID       string
	Guest        *GuestContact
	AddressID    string
	Shipping     *ShippingInput
	ShopCardCode string
}

// Checkout arma el pedido desde el carrito del bucket. No hay pasarela de pago:
// el pedido nace como paid.
func (s *Service) Checkout(ctx context.Context, b cart.Bucket, in CheckoutInput) (Order, error) {
	items, err := b.Load(ctx)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}
	view, err := s.deps.Carts.View(ctx, items)
	if err != nil {
		return Order{}, err
	}
	if len(view.Lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	for _, l := range view.Lines {
		if !l.Available {
			return Order{}, fmt.Errorf("%w: %s", ErrOutOfStock, l.ProductName)
		}
	}

	now := s.now()
	o := Order{
		ID:            uuid.NewString(),
		Status:        StatusPaid,
		SubtotalKurus: view.SubtotalKurus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.applyCustomer(ctx, &o, in); err != nil {
		return Order{}, err
	}
	if err := s.applyShipping(ctx, &o, in); err != nil {
		return Order{}, err
	}

	deltas := make(map[string]int, len(view.Lines))
	for _, l := range view.Lines {
		deltas[l.ProductID] = l.Quantity
		o.Items = append(o.Items, OrderItem{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      l.ProductID,
			ProductName:    l.ProductName,
			UnitPriceKurus: l.UnitPriceKurus,
			Quantity:       l.Quantity,
		})
	}

	if code := strings.TrimSpace(in.ShopCardCode); code != "" {
		card, discount, err := s.deps.Cards.Quote(ctx, code, o.SubtotalKurus)
		if err != nil {
			return Order{}, fmt.Errorf("%w: %v", ErrShopCard, err)
		}
		o.ShopCardCode = card.Code
		o.DiscountKurus = discount
	}
	o.TotalKurus = o.SubtotalKurus - o.DiscountKurus

	place := PlaceInput{Order: o, StockDeltas: deltas, CardDebit: o.DiscountKurus}
	if in.UserID != "" {
		place.ClearCartUserID = in.UserID
	}

	for attempt := 0; ; attempt++ {
		number, err := newNumber(now)
		if err != nil {
			return Order{}, err
		}
		place.Order.Number = number

		err = s.repo.Place(ctx, place)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, ErrNumberTaken) && attempt < 3:
			continue
		case errors.Is(err, catalog.ErrOutOfStock), errors.Is(err, catalog.ErrNotFound):
			return Order{}, ErrOutOfStock
		case errors.Is(err, shopcards.ErrInsufficient), errors.Is(err, shopcards.ErrNotFound):
			return Order{}, ErrShopCard
		default:
			return Order{}, err
		}
	}

	// El carrito de usuario se vacía dentro de Place; el de sesión acá.
	if in.UserID == "" {
		if err := s.deps.Carts.Clear(ctx, b); err != nil {
			return place.Order, err
		}
	}
	return place.Order, nil
}

func (s *Service) applyCustomer(ctx context.Context, o *Order, in CheckoutInput) error {
	if in.UserID != "" {
		uid := in.UserID
		o.UserID = &uid
		if in.Guest != nil {
			o.ShipEmail = strings.TrimSpace(in.Guest.Email)
		}
		return nil
	}

	if in.Guest == nil {
		return ErrInvalidInput
	}
	g, err := s.deps.Guests.FindOrCreateGuest(ctx, in.Guest.FullName, in.Guest.Email, in.Guest.Phone)
	if err != nil {
		return ErrInvalidInput
	}
	gid := g.ID
	o.GuestProfileID = &gid
	o.ShipEmail = g.Email
	return nil
}

func (s *Service) applyShipping(ctx context.Context, o *Order, in CheckoutInput) error {
	var sh ShippingInput
	switch {
	case in.AddressID != "":
		if in.UserID == "" {
			return ErrInvalidShipping
		}
		a, err := s.deps.Addresses.Get(ctx, in.UserID, in.AddressID)
		if err != nil {
			return ErrInvalidShipping
		}
		sh = ShippingInput{
			FullName:       a.FullName,
			Phone:          a.Phone,
			ProvinceID:     a.ProvinceID,
			DistrictID:     a.DistrictID,
			NeighborhoodID: a.NeighborhoodID,
			Line:           a.Line,
			PostalCode:     a.PostalCode,
		}
	case in.Shipping != nil:
		sh = *in.Shipping
		phone, ok := accounts.NormalizePhone(sh.Phone)
		if !ok {
			return ErrInvalidShipping
		}
		sh.Phone = phone
	default:
		return ErrInvalidShipping
	}

	sh.FullName = strings.TrimSpace(sh.FullName)
	sh.Line = strings.TrimSpace(sh.Line)
	if sh.FullName == "" || sh.Line == "" {
		return ErrInvalidShipping
	}
	if err := s.deps.Locations.ValidatePair(ctx, sh.ProvinceID, sh.DistrictID, sh.NeighborhoodID); err != nil {
		return ErrInvalidShipping
	}
	province, district, neighborhood, err := s.deps.Locations.Names(ctx, sh.ProvinceID, sh.DistrictID, sh.NeighborhoodID)
	if err != nil {
		return ErrInvalidShipping
	}

	o.ShipFullName = sh.FullName
	o.ShipPhone = sh.Phone
	o.ShipProvince = province
	o.ShipDistrict = district
	o.ShipNeighborhood = neighborhood
	o.ShipLine = sh.Line
	o.ShipPostalCode = strings.TrimSpace(sh.PostalCode)
	return nil
}

// newNumber: SP-YYYYMMDD-XXXXXX
func newNumber(now time.Time) (string, error) {
	max := big.NewInt(int64(len(numberAlphabet)))
	var b strings.Builder
	b.WriteString("SP-")
	b.WriteString(now.Format("20060102"))
	b.WriteByte('-')
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("order number: %w", err)
		}
		b.WriteByte(numberAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// Get: dueño o admin. Para otros usuarios responde ErrNotFound.
func (s *Service) Get(ctx context.Context, id string, actor auth.Claims) (Order, error) {
	o, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Order{}, ErrNotFound
	}
	if !actor.IsAdmin() && !o.OwnedBy(actor.UserID) {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) Cancel(ctx context.Context, id string, actor auth.Claims) (Order, error) {
	o, err := s.Get(ctx, id, actor)
	if err != nil {
		return Order{}, err
	}
	if !o.Status.Cancellable() {
		return Order{}, ErrNotCancellable
	}
	if err := s.repo.Cancel(ctx, o); err != nil {
		return Order{}, err
	}
	o.Status = StatusCancelled
	o.UpdatedAt = s.now()
	return o, nil
}

// UpdateStatus (admin) solo avanza: pending -> paid -> shipped -> delivered.
func (s *Service) UpdateStatus(ctx context.Context, id string, actor auth.Claims, next Status) (Order, error) {
	if !actor.IsAdmin() {
		return Order{}, ErrForbidden
	}
	if next == StatusCancelled {
		return s.Cancel(ctx, id, actor)
	}
	if !next.Valid() {
		return Order{}, ErrInvalidInput
	}

	o, err := s.Get(ctx, id, actor)
	if err != nil {
		return Order{}, err
	}
	if !o.Status.CanAdvanceTo(next) {
		return Order{}, ErrBadTransition
	}
	if err := s.repo.UpdateStatus(ctx, o.ID, next); err != nil {
		return Order{}, err
	}
	o.Status = next
	o.UpdatedAt = s.now()
	return o, nil
}

type AdminListInput struct {
	Status   Status
	Page     int
	PageSize int
}

type AdminPage struct {
	Rows     []AdminRow
	Total    int64
	Page     int
	PageSize int
}

func (s *Service) AdminList(ctx context.Context, actor auth.Claims, in AdminListInput) (AdminPage, error) {
	if !actor.IsAdmin() {
		return AdminPage{}, ErrForbidden
	}
	if in.Status != "" && !in.Status.Valid() {
		return AdminPage{}, ErrInvalidInput
	}
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size <= 0 {
		size = DefaultAdminPage
	}
	if size > MaxAdminPage {
		size = MaxAdminPage
	}

	rows, total, err := s.repo.AdminList(ctx, AdminFilter{Status: in.Status, Offset: (page - 1) * size, Limit: size})
	if err != nil {
		return AdminPage{}, err
	}
	return AdminPage{Rows: rows, Total: total, Page: page, PageSize: size}, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}
