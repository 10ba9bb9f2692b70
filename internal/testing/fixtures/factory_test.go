package fixtures

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openlearn/academy/api/internal/model"
	"github.com/openlearn/academy/api/internal/testing/testdb"
)

func newFactory(t *testing.T) (*Factory, *testdb.TestDB) {
	t.Helper()
	tdb := testdb.New(t)
	return New(tdb.DB, tdb.Snapshot), tdb
}

// ============================================================================
// User Factory Tests
// ============================================================================

func TestCreateUser_Defaults(t *testing.T) {
	f, tdb := newFactory(t)

	user, err := f.CreateUser()
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, model.UserRoleStudent, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsVerified)
	assert.False(t, user.IsSuperuser)
	assert.Equal(t, 1, tdb.Count("users"))
}

func TestCreateUser_HashesPassword(t *testing.T) {
	f, tdb := newFactory(t)

	user, err := f.CreateUser(func(o *UserOpts) { o.Password = "s3cret" })
	require.NoError(t, err)

	var hash string
	tdb.MustQueryRow("SELECT hashed_password FROM users WHERE id = ?", []any{user.ID}, &hash)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestCreateUser_Overrides(t *testing.T) {
	f, _ := newFactory(t)

	user, err := f.CreateUser(func(o *UserOpts) {
		o.Email = "fixed@test.local"
		o.Role = model.UserRoleInstructor
		o.IsPremium = true
		o.Coins = 250
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed@test.local", user.Email)
	assert.Equal(t, model.UserRoleInstructor, user.Role)
	assert.True(t, user.IsPremium)
	assert.Equal(t, 250, user.Coins)
}

func TestCreateUser_DuplicateEmail_ConstraintErrorNamesField(t *testing.T) {
	f, _ := newFactory(t)

	_, err := f.CreateUser(func(o *UserOpts) { o.Email = "dup@test.local" })
	require.NoError(t, err)

	_, err = f.CreateUser(func(o *UserOpts) { o.Email = "dup@test.local" })

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "users", cerr.Entity)
	assert.Equal(t, "email", cerr.Field)
}

func TestCreateSuperuser_SetsFlagAndRole(t *testing.T) {
	f, _ := newFactory(t)

	user, err := f.CreateSuperuser()
	require.NoError(t, err)

	assert.True(t, user.IsSuperuser)
	assert.True(t, user.IsAdmin())
}

// ============================================================================
// Course Factory Tests
// ============================================================================

func TestCreateCourse_DerivesSlugFromTitle(t *testing.T) {
	f, _ := newFactory(t)

	course, err := f.CreateCourse(func(o *CourseOpts) { o.Title = "Intro to Go" })
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(course.Slug, "intro-to-go-"), "slug %q", course.Slug)
}

func TestCreateCourse_SameTitle_UniqueSlugs(t *testing.T) {
	f, _ := newFactory(t)

	a, err := f.CreateCourse(func(o *CourseOpts) { o.Title = "Intro to Go" })
	require.NoError(t, err)
	b, err := f.CreateCourse(func(o *CourseOpts) { o.Title = "Intro to Go" })
	require.NoError(t, err)

	assert.NotEqual(t, a.Slug, b.Slug)
}

func TestCreateCourse_ExplicitSlugWins(t *testing.T) {
	f, _ := newFactory(t)

	course, err := f.CreateCourse(func(o *CourseOpts) {
		o.Title = "Anything"
		o.Slug = "fixed-slug"
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed-slug", course.Slug)
}

func TestCreateCourse_WithoutInstructor_CreatesOneTransitively(t *testing.T) {
	f, tdb := newFactory(t)

	course, err := f.CreateCourse()
	require.NoError(t, err)

	assert.NotZero(t, course.InstructorID)
	assert.Equal(t, 1, tdb.Count("users"))

	var role string
	tdb.MustQueryRow("SELECT role FROM users WHERE id = ?", []any{course.InstructorID}, &role)
	assert.Equal(t, string(model.UserRoleInstructor), role)
}

func TestCreateCourse_PrerequisitesStoredAsJSON(t *testing.T) {
	f, tdb := newFactory(t)

	course, err := f.CreateCourse(func(o *CourseOpts) {
		o.Prerequisites = []string{"basics", "tooling"}
	})
	require.NoError(t, err)

	var raw string
	tdb.MustQueryRow("SELECT prerequisites FROM courses WHERE id = ?", []any{course.ID}, &raw)
	assert.JSONEq(t, `["basics","tooling"]`, raw)
}

// ============================================================================
// Coupon Factory Tests
// ============================================================================

func TestCreateCoupon_TransitiveInstructor(t *testing.T) {
	f, tdb := newFactory(t)

	coupon, err := f.CreateCoupon()
	require.NoError(t, err)

	assert.NotZero(t, coupon.InstructorID)
	assert.Nil(t, coupon.CourseID)
	assert.Equal(t, 1, tdb.Count("users"))
}

func TestCreateCoupon_ScopedToCourse(t *testing.T) {
	f, _ := newFactory(t)

	instructor, err := f.CreateInstructor()
	require.NoError(t, err)
	course, err := f.CreateCourse(func(o *CourseOpts) { o.Instructor = instructor })
	require.NoError(t, err)

	coupon, err := f.CreateCoupon(func(o *CouponOpts) {
		o.Instructor = instructor
		o.Course = course
	})
	require.NoError(t, err)

	require.NotNil(t, coupon.CourseID)
	assert.Equal(t, course.ID, *coupon.CourseID)
}

func TestCreateCoupon_DuplicateCode_ConstraintErrorNamesField(t *testing.T) {
	f, _ := newFactory(t)

	_, err := f.CreateCoupon(func(o *CouponOpts) { o.Code = "SAVE10" })
	require.NoError(t, err)

	_, err = f.CreateCoupon(func(o *CouponOpts) { o.Code = "SAVE10" })

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "coupons", cerr.Entity)
	assert.Equal(t, "code", cerr.Field)
}

// ============================================================================
// Cart and Order Factory Tests
// ============================================================================

func TestCreateGuestCart_GeneratesSessionID(t *testing.T) {
	f, _ := newFactory(t)

	cart, err := f.CreateGuestCart()
	require.NoError(t, err)

	assert.Nil(t, cart.UserID)
	require.NotNil(t, cart.SessionID)
	assert.NotEmpty(t, *cart.SessionID)
}

func TestCreateOrder_DerivesOrderNumber(t *testing.T) {
	f, _ := newFactory(t)

	order, err := f.CreateOrder()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"), "order number %q", order.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.NotNil(t, order.UserID)
}

func TestCreateOrder_Guest(t *testing.T) {
	f, tdb := newFactory(t)

	email := "guest@test.local"
	order, err := f.CreateOrder(func(o *OrderOpts) { o.GuestEmail = &email })
	require.NoError(t, err)

	assert.True(t, order.IsGuest())
	assert.Equal(t, 0, tdb.Count("users"), "guest order should not create a user")
}

func TestCreateOrder_CompletedStatus_SetsCompletedAt(t *testing.T) {
	f, _ := newFactory(t)

	order, err := f.CreateOrder(func(o *OrderOpts) { o.Status = model.OrderStatusCompleted })
	require.NoError(t, err)

	assert.NotNil(t, order.CompletedAt)
}

// ============================================================================
// Enrollment and Certificate Factory Tests
// ============================================================================

func TestCreateEnrollment_LinksUserAndCourse(t *testing.T) {
	f, tdb := newFactory(t)

	user, err := f.CreateUser()
	require.NoError(t, err)
	course, err := f.CreateCourse()
	require.NoError(t, err)

	enrollment, err := f.CreateEnrollment(user, course)
	require.NoError(t, err)

	assert.Equal(t, user.ID, enrollment.UserID)
	assert.Equal(t, course.ID, enrollment.CourseID)
	assert.Equal(t, model.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, 1, tdb.Count("enrollments"))
}

func TestCreateCertificate_DerivesNumber(t *testing.T) {
	f, _ := newFactory(t)

	user, err := f.CreateUser()
	require.NoError(t, err)
	course, err := f.CreateCourse()
	require.NoError(t, err)

	cert, err := f.CreateCertificate(user, course)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(cert.CertificateNumber, "CERT-"), "certificate number %q", cert.CertificateNumber)
	assert.False(t, cert.PDFGenerated)
}

// ============================================================================
// Validated Insert Tests
// ============================================================================

func TestInsert_UnknownTable_ConstraintError(t *testing.T) {
	f, _ := newFactory(t)

	_, err := f.insert("widgets", map[string]any{"name": "x"})

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "widgets", cerr.Entity)
}

func TestInsert_UnknownColumn_ConstraintErrorNamesField(t *testing.T) {
	f, _ := newFactory(t)

	_, err := f.insert("users", map[string]any{
		"email":           "x@test.local",
		"hashed_password": "x",
		"nickname":        "nope",
	})

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "users", cerr.Entity)
	assert.Equal(t, "nickname", cerr.Field)
}

func TestInsert_MissingRequiredValue_FailsBeforeDatabase(t *testing.T) {
	f, tdb := newFactory(t)

	_, err := f.insert("users", map[string]any{"email": "x@test.local"})

	var cerr *ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "users", cerr.Entity)
	assert.Equal(t, "hashed_password", cerr.Field)
	assert.Equal(t, 0, tdb.Count("users"))
}
