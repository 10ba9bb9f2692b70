package schema

// DefaultRegistry declares the Academy entity model: users, the course
// catalog, commerce tables (carts, orders, coupons), and learner progress
// (enrollments, certificates). Tests and the server boot path both provision
// from this registry so the two can never drift apart.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustDeclare(Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "email", Type: TypeText, NotNull: true, Unique: true},
			{Name: "username", Type: TypeText, Unique: true},
			{Name: "hashed_password", Type: TypeText, NotNull: true},
			{Name: "full_name", Type: TypeText},
			{Name: "role", Type: TypeText, NotNull: true, Default: "student"},
			{Name: "is_active", Type: TypeBoolean, NotNull: true, Default: true},
			{Name: "is_superuser", Type: TypeBoolean, NotNull: true, Default: false},
			{Name: "is_premium", Type: TypeBoolean, NotNull: true, Default: false},
			// Added after initial model authoring; provisioning from the
			// declarations is what keeps it present in every database.
			{Name: "is_verified", Type: TypeBoolean, NotNull: true, Default: false},
			{Name: "coins", Type: TypeInteger, NotNull: true, Default: 0},
			{Name: "streak_days", Type: TypeInteger, NotNull: true, Default: 0},
			{Name: "token_version", Type: TypeInteger, NotNull: true, Default: 1},
			{Name: "last_login", Type: TypeTimestamp},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: Now},
		},
	})

	r.MustDeclare(Table{
		Name: "courses",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "title", Type: TypeText, NotNull: true},
			{Name: "slug", Type: TypeText, NotNull: true, Unique: true},
			{Name: "description", Type: TypeText},
			{Name: "thumbnail_url", Type: TypeText},
			{Name: "instructor_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "users", Column: "id"}},
			{Name: "level", Type: TypeText, NotNull: true, Default: "beginner"},
			{Name: "prerequisites", Type: TypeJSON},
			{Name: "is_published", Type: TypeBoolean, NotNull: true, Default: false},
			{Name: "is_featured", Type: TypeBoolean, NotNull: true, Default: false},
			{Name: "price", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "currency", Type: TypeText, NotNull: true, Default: "USD"},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "published_at", Type: TypeTimestamp},
		},
	})

	r.MustDeclare(Table{
		Name: "coupons",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "code", Type: TypeText, NotNull: true, Unique: true},
			{Name: "description", Type: TypeText},
			{Name: "discount_type", Type: TypeText, NotNull: true},
			{Name: "discount_value", Type: TypeReal, NotNull: true},
			{Name: "min_purchase_amount", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "max_discount_amount", Type: TypeReal},
			{Name: "course_id", Type: TypeInteger, References: &ForeignKey{Table: "courses", Column: "id", OnDelete: "CASCADE"}},
			{Name: "instructor_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "users", Column: "id", OnDelete: "CASCADE"}},
			{Name: "usage_limit", Type: TypeInteger},
			{Name: "usage_count", Type: TypeInteger, NotNull: true, Default: 0},
			{Name: "usage_per_user_limit", Type: TypeInteger, NotNull: true, Default: 1},
			{Name: "is_active", Type: TypeBoolean, NotNull: true, Default: true},
			{Name: "valid_from", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "valid_until", Type: TypeTimestamp},
		},
	})

	r.MustDeclare(Table{
		Name: "shopping_carts",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "user_id", Type: TypeInteger, References: &ForeignKey{Table: "users", Column: "id", OnDelete: "CASCADE"}},
			{Name: "session_id", Type: TypeText, Unique: true},
			{Name: "is_active", Type: TypeBoolean, NotNull: true, Default: true},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "updated_at", Type: TypeTimestamp},
			{Name: "expires_at", Type: TypeTimestamp},
		},
	})

	r.MustDeclare(Table{
		Name: "cart_items",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "cart_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "shopping_carts", Column: "id", OnDelete: "CASCADE"}},
			{Name: "course_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "courses", Column: "id"}},
			{Name: "quantity", Type: TypeInteger, NotNull: true, Default: 1},
			{Name: "unit_price", Type: TypeReal, NotNull: true},
			{Name: "coupon_id", Type: TypeInteger, References: &ForeignKey{Table: "coupons", Column: "id", OnDelete: "SET NULL"}},
			{Name: "added_at", Type: TypeTimestamp, NotNull: true, Default: Now},
		},
	})

	r.MustDeclare(Table{
		Name: "orders",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "order_number", Type: TypeText, NotNull: true, Unique: true},
			{Name: "user_id", Type: TypeInteger, References: &ForeignKey{Table: "users", Column: "id"}},
			{Name: "guest_email", Type: TypeText},
			{Name: "status", Type: TypeText, NotNull: true, Default: "pending"},
			{Name: "subtotal", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "discount", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "total", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "currency", Type: TypeText, NotNull: true, Default: "USD"},
			{Name: "coupon_code", Type: TypeText},
			{Name: "created_at", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "completed_at", Type: TypeTimestamp},
		},
	})

	r.MustDeclare(Table{
		Name: "order_items",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "order_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "orders", Column: "id", OnDelete: "CASCADE"}},
			{Name: "course_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "courses", Column: "id"}},
			{Name: "item_name", Type: TypeText, NotNull: true},
			{Name: "quantity", Type: TypeInteger, NotNull: true, Default: 1},
			{Name: "unit_price", Type: TypeReal, NotNull: true},
			{Name: "total", Type: TypeReal, NotNull: true},
		},
	})

	r.MustDeclare(Table{
		Name: "enrollments",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "user_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "users", Column: "id", OnDelete: "CASCADE"}},
			{Name: "course_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "courses", Column: "id", OnDelete: "CASCADE"}},
			{Name: "status", Type: TypeText, NotNull: true, Default: "active"},
			{Name: "progress", Type: TypeReal, NotNull: true, Default: 0.0},
			{Name: "enrolled_at", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "completed_at", Type: TypeTimestamp},
		},
	})

	r.MustDeclare(Table{
		Name: "certificates",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, NotNull: true},
			{Name: "certificate_number", Type: TypeText, NotNull: true, Unique: true},
			{Name: "user_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "users", Column: "id", OnDelete: "CASCADE"}},
			{Name: "course_id", Type: TypeInteger, NotNull: true, References: &ForeignKey{Table: "courses", Column: "id", OnDelete: "CASCADE"}},
			{Name: "issued_at", Type: TypeTimestamp, NotNull: true, Default: Now},
			{Name: "pdf_generated", Type: TypeBoolean, NotNull: true, Default: false},
		},
	})

	return r
}
