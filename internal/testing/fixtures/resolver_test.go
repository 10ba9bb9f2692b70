package fixtures

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/academy/api/internal/model"
	"github.com/openlearn/academy/api/internal/testing/testdb"
	"github.com/openlearn/academy/api/pkg/jwt"
)

func newResolver(t *testing.T) (*Resolver, *testdb.TestDB) {
	t.Helper()
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)
	return NewResolver(DefaultRegistry(), f), tdb
}

// ============================================================================
// Built-in Fixture Tests
// ============================================================================

func TestResolve_NormalUserTokenHeaders(t *testing.T) {
	r, tdb := newResolver(t)

	headers := Resolve[map[string]string](t, r, "normal_user_token_headers")

	auth := headers["Authorization"]
	require.True(t, strings.HasPrefix(auth, "Bearer "), "got %q", auth)

	// The token must validate against the session signer and carry the
	// resolved user's identity.
	svc := Resolve[*jwt.Service](t, r, "token_signer")
	claims, err := svc.Validate(strings.TrimPrefix(auth, "Bearer "))
	require.NoError(t, err)

	user := Resolve[*model.User](t, r, "test_user")
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.False(t, claims.IsSuperuser)
	assert.Equal(t, 1, tdb.Count("users"))
}

func TestResolve_SuperuserTokenHeaders(t *testing.T) {
	r, _ := newResolver(t)

	headers := Resolve[map[string]string](t, r, "superuser_token_headers")

	svc := Resolve[*jwt.Service](t, r, "token_signer")
	claims, err := svc.Validate(strings.TrimPrefix(headers["Authorization"], "Bearer "))
	require.NoError(t, err)

	assert.True(t, claims.IsSuperuser)
	assert.True(t, claims.IsAdmin())
}

func TestResolve_TestCourse_OwnedByTestInstructor(t *testing.T) {
	r, _ := newResolver(t)

	course := Resolve[*model.Course](t, r, "test_course")
	instructor := Resolve[*model.User](t, r, "test_instructor")

	assert.Equal(t, instructor.ID, course.InstructorID)
	assert.True(t, course.IsPublished)
}

func TestResolve_TestCoupon_ScopedToTestCourse(t *testing.T) {
	r, _ := newResolver(t)

	coupon := Resolve[*model.Coupon](t, r, "test_coupon")
	course := Resolve[*model.Course](t, r, "test_course")

	require.NotNil(t, coupon.CourseID)
	assert.Equal(t, course.ID, *coupon.CourseID)
	assert.True(t, coupon.IsActive)
}

func TestResolve_CartWithItems(t *testing.T) {
	r, tdb := newResolver(t)

	cwi := Resolve[*CartWithItems](t, r, "test_cart_with_items")

	require.Len(t, cwi.Items, 1)
	assert.Equal(t, cwi.Cart.ID, cwi.Items[0].CartID)
	assert.Equal(t, 1, tdb.Count("cart_items"))

	course := Resolve[*model.Course](t, r, "test_course")
	assert.Equal(t, course.Price, cwi.Items[0].UnitPrice)
}

func TestResolve_GuestOrder_HasNoUser(t *testing.T) {
	r, _ := newResolver(t)

	order := Resolve[*model.Order](t, r, "test_guest_order")

	assert.True(t, order.IsGuest())
	require.NotNil(t, order.GuestEmail)
}

func TestResolve_CompletedOrder(t *testing.T) {
	r, tdb := newResolver(t)

	order := Resolve[*model.Order](t, r, "test_completed_order")

	assert.Equal(t, model.OrderStatusCompleted, order.Status)
	assert.NotNil(t, order.CompletedAt)
	assert.Equal(t, 1, tdb.Count("order_items"))
}

// ============================================================================
// Caching Tests
// ============================================================================

func TestResolve_SameFixtureSharedWithinResolver(t *testing.T) {
	r, tdb := newResolver(t)

	// test_course and test_coupon both depend on test_instructor; within one
	// resolver they must observe the same instructor.
	course := Resolve[*model.Course](t, r, "test_course")
	coupon := Resolve[*model.Coupon](t, r, "test_coupon")

	assert.Equal(t, course.InstructorID, coupon.InstructorID)
	assert.Equal(t, 1, tdb.Count("users"))
}

func TestResolve_TwiceReturnsCachedValue(t *testing.T) {
	r, tdb := newResolver(t)

	a := Resolve[*model.User](t, r, "test_user")
	b := Resolve[*model.User](t, r, "test_user")

	assert.Same(t, a, b)
	assert.Equal(t, 1, tdb.Count("users"))
}

func TestResolve_FreshResolverBuildsFreshEntities(t *testing.T) {
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)
	reg := DefaultRegistry()

	a := Resolve[*model.User](t, NewResolver(reg, f), "test_user")
	b := Resolve[*model.User](t, NewResolver(reg, f), "test_user")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, tdb.Count("users"))
}

func TestResolve_SessionScopeSharedAcrossResolvers(t *testing.T) {
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)
	reg := DefaultRegistry()

	a := Resolve[*jwt.Service](t, NewResolver(reg, f), "token_signer")
	b := Resolve[*jwt.Service](t, NewResolver(reg, f), "token_signer")

	assert.Same(t, a, b)
}

// ============================================================================
// Error Tests
// ============================================================================

func TestResolve_UnknownFixture(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.Resolve("no_such_fixture")

	assert.ErrorIs(t, err, ErrUnknownFixture)
}

func TestResolve_Cycle_ReportsFullPathBeforeSideEffects(t *testing.T) {
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)

	reg := NewRegistry()
	reg.MustRegister(Node{
		Name:      "alpha",
		DependsOn: []string{"beta"},
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateUser()
		},
	})
	reg.MustRegister(Node{
		Name:      "beta",
		DependsOn: []string{"gamma"},
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateUser()
		},
	})
	reg.MustRegister(Node{
		Name:      "gamma",
		DependsOn: []string{"alpha"},
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateUser()
		},
	})

	_, err := NewResolver(reg, f).Resolve("alpha")

	var cerr *CycleError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "alpha"}, cerr.Path)
	assert.Equal(t, 0, tdb.Count("users"), "cycle must be detected before any entity is created")
}

func TestResolve_UndeclaredCycleViaGet_StillDetected(t *testing.T) {
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)

	// The dependency is taken via Get without being declared, so only the
	// resolution stack can catch it.
	reg := NewRegistry()
	reg.MustRegister(Node{
		Name: "sneaky",
		Build: func(c *Context) (any, error) {
			return c.Get("sneaky")
		},
	})

	_, err := NewResolver(reg, f).Resolve("sneaky")

	var cerr *CycleError
	require.ErrorAs(t, err, &cerr)
}

func TestResolve_WrongType_FailsWithBothTypes(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.Resolve("test_user")
	require.NoError(t, err)

	_, err = Dep[*model.Course](&Context{r: r}, "test_user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*model.User")
	assert.Contains(t, err.Error(), "*model.Course")
}

func TestRegistry_RegisterTwice_Fails(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	n := Node{Name: "dup", Build: func(c *Context) (any, error) { return nil, nil }}
	require.NoError(t, reg.Register(n))
	assert.Error(t, reg.Register(n))
}

func TestResolve_BuildError_Propagates(t *testing.T) {
	tdb := testdb.New(t)
	f := New(tdb.DB, tdb.Snapshot)

	reg := NewRegistry()
	reg.MustRegister(Node{
		Name: "broken",
		Build: func(c *Context) (any, error) {
			return nil, errors.New("boom")
		},
	})
	reg.MustRegister(Node{
		Name:      "dependent",
		DependsOn: []string{"broken"},
		Build: func(c *Context) (any, error) {
			return c.Get("broken")
		},
	})

	_, err := NewResolver(reg, f).Resolve("dependent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}
