package fixtures

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openlearn/academy/api/internal/database"
	"github.com/openlearn/academy/api/internal/model"
	"github.com/openlearn/academy/api/internal/schema"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Factory creates test entities in the database
type Factory struct {
	db   *sql.DB
	snap *schema.Snapshot
}

// New creates a new fixture factory bound to a database and the snapshot
// its schema was provisioned from.
func New(db *sql.DB, snap *schema.Snapshot) *Factory {
	return &Factory{db: db, snap: snap}
}

// DB returns the underlying database handle.
func (f *Factory) DB() *sql.DB {
	return f.db
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	// Store cancel to prevent leak warning
	_ = cancel
	return c
}

// insert validates a row against the provisioned schema and inserts it.
// Unknown columns and missing required values fail as ConstraintError
// before the database is touched.
func (f *Factory) insert(table string, row map[string]any) (int64, error) {
	def, ok := f.snap.Table(table)
	if !ok {
		return 0, &ConstraintError{Entity: table, Reason: "entity is not declared in the schema"}
	}

	for name := range row {
		if _, ok := def.Column(name); !ok {
			return 0, &ConstraintError{Entity: table, Field: name, Reason: "column is not declared in the schema"}
		}
	}
	for _, col := range def.Columns {
		if !col.Required() {
			continue
		}
		if v, ok := row[col.Name]; !ok || v == nil {
			return 0, &ConstraintError{Entity: table, Field: col.Name, Reason: "required value missing and no default declared"}
		}
	}

	cols := make([]string, 0, len(row))
	for name := range row {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, name := range cols {
		args[i] = row[name]
		marks[i] = "?"
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))

	res, err := f.db.ExecContext(ctx(), query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, uniqueViolation(table, err)
		}
		return 0, fmt.Errorf("fixtures: insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

// ============================================================================
// User Fixtures
// ============================================================================

// UserOpts customizes user creation
type UserOpts struct {
	Email       string
	Username    *string
	Password    string
	FullName    string
	Role        model.UserRole
	IsActive    bool
	IsSuperuser bool
	IsPremium   bool
	IsVerified  bool
	Coins       int
}

// CreateUser creates a user with optional customizations
func (f *Factory) CreateUser(opts ...func(*UserOpts)) (*model.User, error) {
	o := &UserOpts{
		Email:      fmt.Sprintf("user_%s@test.local", randomID()),
		Password:   "testpass123",
		FullName:   "Test User",
		Role:       model.UserRoleStudent,
		IsActive:   true,
		IsVerified: true,
	}
	for _, fn := range opts {
		fn(o)
	}

	// MinCost keeps the suite fast; these hashes never leave the test database
	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("fixtures: failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	row := map[string]any{
		"email":           o.Email,
		"hashed_password": string(hash),
		"full_name":       o.FullName,
		"role":            string(o.Role),
		"is_active":       o.IsActive,
		"is_superuser":    o.IsSuperuser,
		"is_premium":      o.IsPremium,
		"is_verified":     o.IsVerified,
		"coins":           o.Coins,
		"streak_days":     0,
		"token_version":   1,
		"created_at":      now,
	}
	if o.Username != nil {
		row["username"] = *o.Username
	}

	id, err := f.insert("users", row)
	if err != nil {
		return nil, err
	}

	return &model.User{
		ID:           id,
		Email:        o.Email,
		Username:     o.Username,
		FullName:     &o.FullName,
		Role:         o.Role,
		IsActive:     o.IsActive,
		IsSuperuser:  o.IsSuperuser,
		IsPremium:    o.IsPremium,
		IsVerified:   o.IsVerified,
		Coins:        o.Coins,
		TokenVersion: 1,
		CreatedAt:    now,
	}, nil
}

// CreateSuperuser creates a user with the superuser flag set
func (f *Factory) CreateSuperuser(opts ...func(*UserOpts)) (*model.User, error) {
	base := func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
		o.IsSuperuser = true
	}
	return f.CreateUser(append([]func(*UserOpts){base}, opts...)...)
}

// CreateInstructor creates a user who can own courses and coupons
func (f *Factory) CreateInstructor(opts ...func(*UserOpts)) (*model.User, error) {
	base := func(o *UserOpts) {
		o.Role = model.UserRoleInstructor
	}
	return f.CreateUser(append([]func(*UserOpts){base}, opts...)...)
}

// ============================================================================
// Course Fixtures
// ============================================================================

// CourseOpts customizes course creation
type CourseOpts struct {
	Title         string
	Slug          string // empty means derive from Title with a unique suffix
	Description   string
	Instructor    *model.User // nil means create one
	Level         model.CourseLevel
	Prerequisites []string
	IsPublished   bool
	Price         float64
	Currency      string
}

// CreateCourse creates a course. If no instructor is supplied one is
// created transitively so the foreign key is always satisfiable.
func (f *Factory) CreateCourse(opts ...func(*CourseOpts)) (*model.Course, error) {
	o := &CourseOpts{
		Title:       fmt.Sprintf("Course %s", randomID()),
		Description: "Test course description",
		Level:       model.CourseLevelBeginner,
		IsPublished: true,
		Price:       49.99,
		Currency:    "USD",
	}
	for _, fn := range opts {
		fn(o)
	}

	instructor := o.Instructor
	if instructor == nil {
		var err error
		instructor, err = f.CreateInstructor()
		if err != nil {
			return nil, err
		}
	}

	slug := o.Slug
	if slug == "" {
		slug = UniqueSlug(o.Title)
	}

	var prereqJSON *string
	if o.Prerequisites != nil {
		data, err := json.Marshal(o.Prerequisites)
		if err != nil {
			return nil, fmt.Errorf("fixtures: failed to encode prerequisites: %w", err)
		}
		s := string(data)
		prereqJSON = &s
	}

	now := time.Now().UTC()
	row := map[string]any{
		"title":         o.Title,
		"slug":          slug,
		"description":   o.Description,
		"instructor_id": instructor.ID,
		"level":         string(o.Level),
		"is_published":  o.IsPublished,
		"price":         o.Price,
		"currency":      o.Currency,
		"created_at":    now,
	}
	if prereqJSON != nil {
		row["prerequisites"] = *prereqJSON
	}

	id, err := f.insert("courses", row)
	if err != nil {
		return nil, err
	}

	return &model.Course{
		ID:            id,
		Title:         o.Title,
		Slug:          slug,
		Description:   &o.Description,
		InstructorID:  instructor.ID,
		Level:         o.Level,
		Prerequisites: prereqJSON,
		IsPublished:   o.IsPublished,
		Price:         o.Price,
		Currency:      o.Currency,
		CreatedAt:     now,
	}, nil
}

// ============================================================================
// Coupon Fixtures
// ============================================================================

// CouponOpts customizes coupon creation
type CouponOpts struct {
	Code          string
	DiscountType  model.DiscountType
	DiscountValue float64
	Instructor    *model.User   // nil means create one
	Course        *model.Course // nil means the coupon applies to all courses
	UsageLimit    *int
	IsActive      bool
	ValidUntil    *time.Time
}

// CreateCoupon creates an instructor-owned discount code. The owning
// instructor is created transitively when not supplied.
func (f *Factory) CreateCoupon(opts ...func(*CouponOpts)) (*model.Coupon, error) {
	o := &CouponOpts{
		Code:          "TEST" + strings.ToUpper(randomID()[:8]),
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
	for _, fn := range opts {
		fn(o)
	}

	instructor := o.Instructor
	if instructor == nil {
		var err error
		instructor, err = f.CreateInstructor()
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	row := map[string]any{
		"code":                 o.Code,
		"discount_type":        string(o.DiscountType),
		"discount_value":       o.DiscountValue,
		"min_purchase_amount":  0.0,
		"instructor_id":        instructor.ID,
		"usage_count":          0,
		"usage_per_user_limit": 1,
		"is_active":            o.IsActive,
		"valid_from":           now,
	}

	var courseID *int64
	if o.Course != nil {
		courseID = &o.Course.ID
		row["course_id"] = o.Course.ID
	}
	if o.UsageLimit != nil {
		row["usage_limit"] = *o.UsageLimit
	}
	if o.ValidUntil != nil {
		row["valid_until"] = *o.ValidUntil
	}

	id, err := f.insert("coupons", row)
	if err != nil {
		return nil, err
	}

	return &model.Coupon{
		ID:                id,
		Code:              o.Code,
		DiscountType:      o.DiscountType,
		DiscountValue:     o.DiscountValue,
		CourseID:          courseID,
		InstructorID:      instructor.ID,
		UsageLimit:        o.UsageLimit,
		UsagePerUserLimit: 1,
		IsActive:          o.IsActive,
		ValidFrom:         now,
		ValidUntil:        o.ValidUntil,
	}, nil
}

// ============================================================================
// Cart Fixtures
// ============================================================================

// CartOpts customizes shopping cart creation
type CartOpts struct {
	User      *model.User // nil with SessionID set means a guest cart
	SessionID *string
	IsActive  bool
}

// CreateCart creates a shopping cart for a user or a guest session.
// With neither supplied a user is created transitively.
func (f *Factory) CreateCart(opts ...func(*CartOpts)) (*model.ShoppingCart, error) {
	o := &CartOpts{IsActive: true}
	for _, fn := range opts {
		fn(o)
	}

	if o.User == nil && o.SessionID == nil {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		o.User = user
	}

	now := time.Now().UTC()
	row := map[string]any{
		"is_active":  o.IsActive,
		"created_at": now,
	}
	var userID *int64
	if o.User != nil {
		userID = &o.User.ID
		row["user_id"] = o.User.ID
	}
	if o.SessionID != nil {
		row["session_id"] = *o.SessionID
	}

	id, err := f.insert("shopping_carts", row)
	if err != nil {
		return nil, err
	}

	return &model.ShoppingCart{
		ID:        id,
		UserID:    userID,
		SessionID: o.SessionID,
		IsActive:  o.IsActive,
		CreatedAt: now,
	}, nil
}

// CreateGuestCart creates a cart bound to a fresh guest session id.
func (f *Factory) CreateGuestCart(opts ...func(*CartOpts)) (*model.ShoppingCart, error) {
	sid := uuid.NewString()
	base := func(o *CartOpts) { o.SessionID = &sid }
	return f.CreateCart(append([]func(*CartOpts){base}, opts...)...)
}

// AddCartItem adds a course to a cart, snapshotting the course price.
func (f *Factory) AddCartItem(cart *model.ShoppingCart, course *model.Course) (*model.CartItem, error) {
	now := time.Now().UTC()
	row := map[string]any{
		"cart_id":    cart.ID,
		"course_id":  course.ID,
		"quantity":   1,
		"unit_price": course.Price,
		"added_at":   now,
	}

	id, err := f.insert("cart_items", row)
	if err != nil {
		return nil, err
	}

	return &model.CartItem{
		ID:        id,
		CartID:    cart.ID,
		CourseID:  course.ID,
		Quantity:  1,
		UnitPrice: course.Price,
		AddedAt:   now,
	}, nil
}

// ============================================================================
// Order Fixtures
// ============================================================================

// OrderOpts customizes order creation
type OrderOpts struct {
	User       *model.User // nil with GuestEmail set means a guest order
	GuestEmail *string
	Status     model.OrderStatus
	Subtotal   float64
	Discount   float64
	Currency   string
	CouponCode *string
}

// CreateOrder creates an order. Without a user or guest email a user is
// created transitively. The order number is derived, never supplied.
func (f *Factory) CreateOrder(opts ...func(*OrderOpts)) (*model.Order, error) {
	o := &OrderOpts{
		Status:   model.OrderStatusPending,
		Subtotal: 49.99,
		Currency: "USD",
	}
	for _, fn := range opts {
		fn(o)
	}

	if o.User == nil && o.GuestEmail == nil {
		user, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		o.User = user
	}

	now := time.Now().UTC()
	orderNumber := fmt.Sprintf("ORD-%d-%s", now.Unix(), strings.ToUpper(randomID()[:6]))
	total := o.Subtotal - o.Discount

	row := map[string]any{
		"order_number": orderNumber,
		"status":       string(o.Status),
		"subtotal":     o.Subtotal,
		"discount":     o.Discount,
		"total":        total,
		"currency":     o.Currency,
		"created_at":   now,
	}
	var userID *int64
	if o.User != nil {
		userID = &o.User.ID
		row["user_id"] = o.User.ID
	}
	if o.GuestEmail != nil {
		row["guest_email"] = *o.GuestEmail
	}
	if o.CouponCode != nil {
		row["coupon_code"] = *o.CouponCode
	}
	var completedAt *time.Time
	if o.Status == model.OrderStatusCompleted {
		completedAt = &now
		row["completed_at"] = now
	}

	id, err := f.insert("orders", row)
	if err != nil {
		return nil, err
	}

	return &model.Order{
		ID:          id,
		OrderNumber: orderNumber,
		UserID:      userID,
		GuestEmail:  o.GuestEmail,
		Status:      o.Status,
		Subtotal:    o.Subtotal,
		Discount:    o.Discount,
		Total:       total,
		Currency:    o.Currency,
		CouponCode:  o.CouponCode,
		CreatedAt:   now,
		CompletedAt: completedAt,
	}, nil
}

// AddOrderItem adds a course line to an order.
func (f *Factory) AddOrderItem(order *model.Order, course *model.Course) (*model.OrderItem, error) {
	row := map[string]any{
		"order_id":   order.ID,
		"course_id":  course.ID,
		"item_name":  course.Title,
		"quantity":   1,
		"unit_price": course.Price,
		"total":      course.Price,
	}

	id, err := f.insert("order_items", row)
	if err != nil {
		return nil, err
	}

	return &model.OrderItem{
		ID:        id,
		OrderID:   order.ID,
		CourseID:  course.ID,
		ItemName:  course.Title,
		Quantity:  1,
		UnitPrice: course.Price,
		Total:     course.Price,
	}, nil
}

// ============================================================================
// Enrollment Fixtures
// ============================================================================

// EnrollmentOpts customizes enrollment creation
type EnrollmentOpts struct {
	Status   model.EnrollmentStatus
	Progress float64
}

// CreateEnrollment links a user to a course.
func (f *Factory) CreateEnrollment(user *model.User, course *model.Course, opts ...func(*EnrollmentOpts)) (*model.Enrollment, error) {
	o := &EnrollmentOpts{Status: model.EnrollmentStatusActive}
	for _, fn := range opts {
		fn(o)
	}

	now := time.Now().UTC()
	row := map[string]any{
		"user_id":     user.ID,
		"course_id":   course.ID,
		"status":      string(o.Status),
		"progress":    o.Progress,
		"enrolled_at": now,
	}
	var completedAt *time.Time
	if o.Status == model.EnrollmentStatusCompleted {
		completedAt = &now
		row["completed_at"] = now
	}

	id, err := f.insert("enrollments", row)
	if err != nil {
		return nil, err
	}

	return &model.Enrollment{
		ID:          id,
		UserID:      user.ID,
		CourseID:    course.ID,
		Status:      o.Status,
		Progress:    o.Progress,
		EnrolledAt:  now,
		CompletedAt: completedAt,
	}, nil
}

// CreateCertificate records a completion certificate for a user and course.
// The certificate number is derived, never supplied.
func (f *Factory) CreateCertificate(user *model.User, course *model.Course) (*model.Certificate, error) {
	now := time.Now().UTC()
	number := fmt.Sprintf("CERT-%d-%s", now.Unix(), strings.ToUpper(randomID()[:6]))

	row := map[string]any{
		"certificate_number": number,
		"user_id":            user.ID,
		"course_id":          course.ID,
		"issued_at":          now,
		"pdf_generated":      false,
	}

	id, err := f.insert("certificates", row)
	if err != nil {
		return nil, err
	}

	return &model.Certificate{
		ID:                id,
		CertificateNumber: number,
		UserID:            user.ID,
		CourseID:          course.ID,
		IssuedAt:          now,
	}, nil
}
