package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietart/artmarket/internal/domain"
	"github.com/vietart/artmarket/internal/telemetry"
)

var (
	testMetricsOnce sync.Once
	testMetrics     *telemetry.BusinessMetrics
)

// metrics register globally, so all tests in the package share one instance.
func metricsForTest() *telemetry.BusinessMetrics {
	testMetricsOnce.Do(func() {
		testMetrics = telemetry.NewBusinessMetrics("artmarket_test")
	})
	return testMetrics
}

func loggerForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memProductStore is an in-memory domain.ProductStore.
type memProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*domain.Product
}

func newMemProductStore(products ...*domain.Product) *memProductStore {
	s := &memProductStore{products: make(map[uuid.UUID]*domain.Product)}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *memProductStore) Get(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProductStore) ListAvailable(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range s.products {
		if p.IsAvailable {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memProductStore) List(_ context.Context, page, limit int) ([]domain.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Product{}
	for _, p := range s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *memProductStore) Create(_ context.Context, params domain.CreateProductParams, artistName string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Product{
		ID:          uuid.New(),
		Title:       params.Title,
		Description: params.Description,
		PriceValue:  params.PriceValue,
		Currency:    params.Currency,
		Images:      params.Images,
		Category:    params.Category,
		Dimensions:  params.Dimensions,
		Material:    params.Material,
		Year:        params.Year,
		ArtistID:    params.ArtistID,
		ArtistName:  artistName,
		IsAvailable: params.IsAvailable,
		Stock:       params.Stock,
		Featured:    params.Featured,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Update(_ context.Context, id uuid.UUID, params domain.UpdateProductParams) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.PriceValue != nil {
		p.PriceValue = *params.PriceValue
	}
	if params.Stock != nil {
		p.Stock = *params.Stock
	}
	if params.IsAvailable != nil {
		p.IsAvailable = *params.IsAvailable
	}
	cp := *p
	return &cp, nil
}

func (s *memProductStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *memProductStore) stock(id uuid.UUID) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

// memCartStore is an in-memory domain.CartStore with the same atomicity
// semantics as the SQL implementation: a failed merge writes nothing.
type memCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*domain.Cart // keyed by user ID

	clearErr   error
	clearCalls int
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[uuid.UUID]*domain.Cart)}
}

func (s *memCartStore) getOrCreateLocked(userID uuid.UUID) *domain.Cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &domain.Cart{
			ID:        uuid.New(),
			UserID:    userID,
			Items:     []domain.CartLine{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		s.carts[userID] = c
	}
	return c
}

func copyCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartLine{}, c.Items...)
	return &cp
}

func (s *memCartStore) GetOrCreate(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.getOrCreateLocked(userID)), nil
}

func (s *memCartStore) Get(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	return copyCart(c), nil
}

func (s *memCartStore) MergeLine(_ context.Context, params domain.MergeLineParams) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.getOrCreateLocked(params.UserID)

	idx := -1
	merged := params.Quantity
	for i, line := range c.Items {
		if line.ProductID == params.ProductID {
			idx = i
			merged = line.Quantity + params.Quantity
			break
		}
	}

	// The SQL store's CHECK constraint fires on the upsert, before the
	// stock comparison; keep the same precedence here.
	if merged > domain.MaxLineQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if merged > params.Stock {
		return nil, domain.InsufficientStock("cart.merge_line", params.Title, params.Stock)
	}

	if idx >= 0 {
		c.Items[idx].Quantity = merged
	} else {
		c.Items = append(c.Items, domain.CartLine{
			ProductID: params.ProductID,
			Quantity:  params.Quantity,
			Price:     params.Price,
			AddedAt:   time.Now(),
		})
	}
	c.ComputeTotals()
	c.UpdatedAt = time.Now()
	return copyCart(c), nil
}

func (s *memCartStore) SetLineQuantity(_ context.Context, userID, productID uuid.UUID, quantity int32) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	for i, line := range c.Items {
		if line.ProductID == productID {
			c.Items[i].Quantity = quantity
			c.ComputeTotals()
			return copyCart(c), nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (s *memCartStore) RemoveLine(_ context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	for i, line := range c.Items {
		if line.ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.ComputeTotals()
			return copyCart(c), nil
		}
	}
	return nil, domain.ErrCartItemNotFound
}

func (s *memCartStore) Clear(_ context.Context, userID uuid.UUID) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return nil, s.clearErr
	}
	c := s.getOrCreateLocked(userID)
	c.Items = []domain.CartLine{}
	c.ComputeTotals()
	return copyCart(c), nil
}

// memOrderStore is an in-memory domain.OrderStore backed by a
// memProductStore for stock decrements. PlaceOrder is all-or-nothing.
type memOrderStore struct {
	mu       sync.Mutex
	products *memProductStore
	orders   map[uuid.UUID]*domain.Order
	seq      int64

	placeOrderErr error
}

func newMemOrderStore(products *memProductStore) *memOrderStore {
	return &memOrderStore{
		products: products,
		orders:   make(map[uuid.UUID]*domain.Order),
	}
}

func (s *memOrderStore) PlaceOrder(_ context.Context, params domain.PlaceOrderParams) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placeOrderErr != nil {
		return nil, s.placeOrderErr
	}
	s.products.mu.Lock()
	defer s.products.mu.Unlock()

	for _, line := range params.Items {
		p, ok := s.products.products[line.ProductID]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		if p.Stock < line.Quantity {
			return nil, domain.InsufficientStock("order.place", line.ProductTitle, p.Stock)
		}
	}
	for _, line := range params.Items {
		s.products.products[line.ProductID].Stock -= line.Quantity
	}

	s.seq++
	order := &domain.Order{
		ID:              uuid.New(),
		OrderNumber:     orderNumber(s.seq),
		UserID:          params.UserID,
		Items:           params.Items,
		ShippingAddress: params.ShippingAddress,
		PaymentMethod:   params.PaymentMethod,
		PaymentStatus:   domain.PaymentPending,
		OrderStatus:     domain.OrderPending,
		Subtotal:        params.Subtotal,
		ShippingFee:     params.ShippingFee,
		TotalAmount:     params.TotalAmount,
		Currency:        params.Currency,
		Notes:           params.Notes,
		PaymentIntentID: params.PaymentIntentID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	s.orders[order.ID] = order
	cp := *order
	return &cp, nil
}

func (s *memOrderStore) Get(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) List(_ context.Context, params domain.OrderListParams) ([]domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Order{}
	for _, o := range s.orders {
		if params.UserID != nil && o.UserID != *params.UserID {
			continue
		}
		if params.Status != "" && o.OrderStatus != params.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *memOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, params domain.UpdateOrderStatusParams) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.OrderStatus = params.Status
	if params.TrackingNumber != "" {
		o.TrackingNumber = params.TrackingNumber
	}
	now := time.Now()
	switch params.Status {
	case domain.OrderShipped:
		o.ShippedAt = &now
	case domain.OrderDelivered:
		o.DeliveredAt = &now
		if o.PaymentMethod == domain.PaymentCOD {
			o.PaymentStatus = domain.PaymentPaid
		}
	}
	cp := *o
	return &cp, nil
}

func (s *memOrderStore) SetPaymentStatusByIntent(_ context.Context, paymentIntentID string, status domain.PaymentStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentIntentID == paymentIntentID {
			o.PaymentStatus = status
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func orderNumber(seq int64) string {
	digits := []byte{'0', '0', '0', '0', '0', '0'}
	for i := 5; i >= 0 && seq > 0; i-- {
		digits[i] = byte('0' + seq%10)
		seq /= 10
	}
	return domain.OrderNumberPrefix + string(digits)
}

// memUserStore is an in-memory domain.UserStore.
type memUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
	tokens map[string]uuid.UUID // refresh token -> user
}

func newMemUserStore(users ...*domain.User) *memUserStore {
	s := &memUserStore{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
		tokens: make(map[string]uuid.UUID),
	}
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
		s.emails[u.Email] = u.ID
	}
	return s
}

func (s *memUserStore) Create(_ context.Context, params domain.CreateUserParams, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emails[params.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        params.Email,
		PasswordHash: passwordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Phone:        params.Phone,
		Role:         params.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *memUserStore) List(_ context.Context, page, limit int) ([]domain.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *memUserStore) SaveRefreshToken(_ context.Context, userID uuid.UUID, token string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *memUserStore) HasRefreshToken(_ context.Context, userID uuid.UUID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.tokens[token]
	return ok && owner == userID, nil
}

func (s *memUserStore) DeleteRefreshToken(_ context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.tokens[token]; ok && owner == userID {
		delete(s.tokens, token)
	}
	return nil
}
