package fixtures

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/openlearn/academy/api/internal/model"
	"github.com/openlearn/academy/api/pkg/jwt"
)

// CartWithItems bundles a cart with its items for fixtures that build both.
type CartWithItems struct {
	Cart  *model.ShoppingCart
	Items []*model.CartItem
}

// signerFor builds Authorization headers for a user with the session's
// signing service.
func signerFor(c *Context, user *model.User) (map[string]string, error) {
	svc, err := Dep[*jwt.Service](c, "token_signer")
	if err != nil {
		return nil, err
	}

	claims := jwt.Claims{
		Subject:     fmt.Sprintf("%d", user.ID),
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		IsSuperuser: user.IsSuperuser,
	}
	if user.FullName != nil {
		claims.FullName = *user.FullName
	}

	token, err := svc.Sign(claims)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// DefaultRegistry declares the named fixtures every suite can resolve.
// Entity fixtures are test-scoped; the token signer is session-scoped
// because it holds no database state and key generation is expensive.
func DefaultRegistry() *Registry {
	reg := NewRegistry()

	reg.MustRegister(Node{
		Name:  "token_signer",
		Scope: ScopeSession,
		Build: func(c *Context) (any, error) {
			key, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				return nil, fmt.Errorf("generating signing key: %w", err)
			}
			return jwt.NewTestService(key, "academy-test", time.Hour), nil
		},
	})

	reg.MustRegister(Node{
		Name: "test_user",
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateUser()
		},
	})

	reg.MustRegister(Node{
		Name: "test_superuser",
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateSuperuser()
		},
	})

	reg.MustRegister(Node{
		Name: "test_instructor",
		Build: func(c *Context) (any, error) {
			return c.Factory().CreateInstructor()
		},
	})

	reg.MustRegister(Node{
		Name:      "normal_user_token_headers",
		DependsOn: []string{"token_signer", "test_user"},
		Build: func(c *Context) (any, error) {
			user, err := Dep[*model.User](c, "test_user")
			if err != nil {
				return nil, err
			}
			return signerFor(c, user)
		},
	})

	reg.MustRegister(Node{
		Name:      "superuser_token_headers",
		DependsOn: []string{"token_signer", "test_superuser"},
		Build: func(c *Context) (any, error) {
			user, err := Dep[*model.User](c, "test_superuser")
			if err != nil {
				return nil, err
			}
			return signerFor(c, user)
		},
	})

	reg.MustRegister(Node{
		Name:      "test_course",
		DependsOn: []string{"test_instructor"},
		Build: func(c *Context) (any, error) {
			instructor, err := Dep[*model.User](c, "test_instructor")
			if err != nil {
				return nil, err
			}
			return c.Factory().CreateCourse(func(o *CourseOpts) {
				o.Instructor = instructor
			})
		},
	})

	reg.MustRegister(Node{
		Name:      "test_coupon",
		DependsOn: []string{"test_instructor", "test_course"},
		Build: func(c *Context) (any, error) {
			instructor, err := Dep[*model.User](c, "test_instructor")
			if err != nil {
				return nil, err
			}
			course, err := Dep[*model.Course](c, "test_course")
			if err != nil {
				return nil, err
			}
			return c.Factory().CreateCoupon(func(o *CouponOpts) {
				o.Instructor = instructor
				o.Course = course
			})
		},
	})

	reg.MustRegister(Node{
		Name:      "test_empty_cart",
		DependsOn: []string{"test_user"},
		Build: func(c *Context) (any, error) {
			user, err := Dep[*model.User](c, "test_user")
			if err != nil {
				return nil, err
			}
			return c.Factory().CreateCart(func(o *CartOpts) {
				o.User = user
			})
		},
	})

	reg.MustRegister(Node{
		Name:      "test_cart_with_items",
		DependsOn: []string{"test_user", "test_course"},
		Build: func(c *Context) (any, error) {
			user, err := Dep[*model.User](c, "test_user")
			if err != nil {
				return nil, err
			}
			course, err := Dep[*model.Course](c, "test_course")
			if err != nil {
				return nil, err
			}
			cart, err := c.Factory().CreateCart(func(o *CartOpts) {
				o.User = user
			})
			if err != nil {
				return nil, err
			}
			item, err := c.Factory().AddCartItem(cart, course)
			if err != nil {
				return nil, err
			}
			return &CartWithItems{Cart: cart, Items: []*model.CartItem{item}}, nil
		},
	})

	reg.MustRegister(Node{
		Name:      "test_pending_order",
		DependsOn: []string{"test_user", "test_course"},
		Build: func(c *Context) (any, error) {
			return buildOrder(c, model.OrderStatusPending)
		},
	})

	reg.MustRegister(Node{
		Name:      "test_completed_order",
		DependsOn: []string{"test_user", "test_course"},
		Build: func(c *Context) (any, error) {
			return buildOrder(c, model.OrderStatusCompleted)
		},
	})

	reg.MustRegister(Node{
		Name:      "test_guest_order",
		DependsOn: []string{"test_course"},
		Build: func(c *Context) (any, error) {
			course, err := Dep[*model.Course](c, "test_course")
			if err != nil {
				return nil, err
			}
			email := "guest_" + randomID()[:8] + "@test.local"
			order, err := c.Factory().CreateOrder(func(o *OrderOpts) {
				o.GuestEmail = &email
				o.Subtotal = course.Price
			})
			if err != nil {
				return nil, err
			}
			if _, err := c.Factory().AddOrderItem(order, course); err != nil {
				return nil, err
			}
			return order, nil
		},
	})

	return reg
}

func buildOrder(c *Context, status model.OrderStatus) (*model.Order, error) {
	user, err := Dep[*model.User](c, "test_user")
	if err != nil {
		return nil, err
	}
	course, err := Dep[*model.Course](c, "test_course")
	if err != nil {
		return nil, err
	}
	order, err := c.Factory().CreateOrder(func(o *OrderOpts) {
		o.User = user
		o.Status = status
		o.Subtotal = course.Price
	})
	if err != nil {
		return nil, err
	}
	if _, err := c.Factory().AddOrderItem(order, course); err != nil {
		return nil, err
	}
	return order, nil
}
