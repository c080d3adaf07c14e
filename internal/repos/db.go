package repos

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"nyumba/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	// Seed the demo catalog if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (product/subcategory references are checked by the application)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  parent_id TEXT,
  sort_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  meta_title TEXT NOT NULL DEFAULT '',
  meta_description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price INTEGER NOT NULL CHECK (price >= 0),
  original_price INTEGER,
  on_sale INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  material TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  dimensions TEXT NOT NULL DEFAULT '{}',
  images TEXT NOT NULL DEFAULT '[]',
  in_stock INTEGER NOT NULL DEFAULT 1,
  featured INTEGER NOT NULL DEFAULT 0,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_price      ON products(price);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  shipping_address TEXT NOT NULL DEFAULT '{}',
  billing_address TEXT NOT NULL DEFAULT '{}',
  subtotal INTEGER NOT NULL CHECK (subtotal >= 0),
  tax INTEGER NOT NULL DEFAULT 0 CHECK (tax >= 0),
  shipping INTEGER NOT NULL DEFAULT 0 CHECK (shipping >= 0),
  discount INTEGER NOT NULL DEFAULT 0 CHECK (discount >= 0),
  total INTEGER NOT NULL CHECK (total >= 0),
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  delivered_at TEXT,
  cancelled_at TEXT,
  refunded_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_email      ON orders(customer_email);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity BETWEEN 1 AND 100),
  price INTEGER NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (order_id, position)
);

-- Atomic counters (order numbers)
CREATE TABLE IF NOT EXISTS sequences(
  name TEXT PRIMARY KEY,
  value INTEGER NOT NULL
);

-- Tips (blog)
CREATE TABLE IF NOT EXISTS tips(
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  excerpt TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  tags TEXT NOT NULL DEFAULT '[]',
  featured INTEGER NOT NULL DEFAULT 0,
  published INTEGER NOT NULL DEFAULT 0,
  published_at TEXT,
  views INTEGER NOT NULL DEFAULT 0,
  read_time INTEGER NOT NULL DEFAULT 1,
  image TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tips_published ON tips(published, published_at);

-- Testimonials
CREATE TABLE IF NOT EXISTS testimonials(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  text TEXT NOT NULL,
  product_id TEXT,
  image TEXT NOT NULL DEFAULT '',
  verified INTEGER NOT NULL DEFAULT 0,
  featured INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- Settings singleton
CREATE TABLE IF NOT EXISTS settings(
  id INTEGER PRIMARY KEY CHECK (id = 1),
  doc TEXT NOT NULL
);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/testimonials")

	now := domain.Now()
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	cats := []struct{ id, name, slug, desc string }{
		{"65f000000000000000000001", "Living Room", "living-room", "Sofas, coffee tables and TV stands"},
		{"65f000000000000000000002", "Bedroom", "bedroom", "Beds, wardrobes and bedside tables"},
		{"65f000000000000000000003", "Dining", "dining", "Dining sets, chairs and sideboards"},
		{"65f000000000000000000004", "Office", "office", "Desks, office chairs and shelving"},
		{"65f000000000000000000005", "Outdoor", "outdoor", "Garden and patio furniture"},
	}
	for i, c := range cats {
		tx.MustExec(`INSERT INTO categories(id,name,slug,description,sort_order,is_active,created_at,updated_at)
		  VALUES(?,?,?,?,?,1,?,?)`, c.id, c.name, c.slug, c.desc, i, now, now)
	}

	prods := []struct {
		id, name, desc, cat, material, color string
		price                                int64
		stock                                int
		featured                             bool
	}{
		{"65f100000000000000000001", "Mvule 3-Seater Sofa", "Solid mvule frame with linen cushions", cats[0].id, "wood", "beige", 85000, 4, true},
		{"65f100000000000000000002", "Teak Coffee Table", "Hand-finished teak with a lower shelf", cats[0].id, "wood", "brown", 32000, 10, false},
		{"65f100000000000000000003", "Queen Bed Frame", "Cypress slatted bed frame, 5x6", cats[1].id, "wood", "natural", 68000, 3, true},
		{"65f100000000000000000004", "6-Seater Dining Set", "Mahogany table with six upholstered chairs", cats[2].id, "wood", "brown", 145000, 2, true},
		{"65f100000000000000000005", "Ergonomic Office Chair", "Mesh back with lumbar support", cats[3].id, "fabric", "black", 24000, 15, false},
		{"65f100000000000000000006", "Rattan Patio Set", "Two chairs and a glass-top table", cats[4].id, "rattan", "natural", 54000, 0, false},
	}
	for _, p := range prods {
		tx.MustExec(`INSERT INTO products(id,name,description,price,category_id,material,color,dimensions,images,in_stock,featured,stock_quantity,created_at,updated_at)
		  VALUES(?,?,?,?,?,?,?,'{"width":0,"height":0,"depth":0}',?,?,?,?,?,?)`,
			p.id, p.name, p.desc, p.price, p.cat, p.material, p.color,
			`["/media/products/`+p.id+`.jpg"]`, p.stock > 0, p.featured, p.stock, now, now)
	}

	// The storefront used to ship these as a static list.
	testimonials := []struct {
		name, location, text string
		rating               int
	}{
		{"Wanjiku M.", "Nairobi", "The sofa arrived on time and the finish is even better than the photos.", 5},
		{"Otieno K.", "Kisumu", "Solid dining set, delivery team was careful and professional.", 5},
		{"Amina H.", "Mombasa", "Great value for money. The bed frame was easy to assemble.", 4},
	}
	for _, t := range testimonials {
		tx.MustExec(`INSERT INTO testimonials(id,name,location,rating,text,verified,featured,status,created_at,updated_at)
		  VALUES(?,?,?,?,?,1,1,'approved',?,?)`, domain.NewID(), t.name, t.location, t.rating, t.text, now, now)
	}

	return tx.Commit()
}

// SeedAdmin ensures an ADMIN user exists for email (idempotent; an existing
// account keeps its password).
func SeedAdmin(ctx context.Context, db *sqlx.DB, email, name, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO users(id,email,name,password_hash,role)
		VALUES(?,?,?,?,'ADMIN')
		ON CONFLICT(email) DO NOTHING
	`, domain.NewID(), email, name, string(h))
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ErrDuplicate reports a write rejected by a unique index (slug, email,
// order number).
var ErrDuplicate = errors.New("repos: duplicate key")

// ErrNoRows is returned by writes that matched no row.
var ErrNoRows = sql.ErrNoRows
