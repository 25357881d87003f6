package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/repository"
	"salesconvert.example/sales-convert/internal/testutil"
	"salesconvert.example/sales-convert/pkg/logger"
)

type fixture struct {
	auth  *AuthService
	sales *SalesService
	count func(email string) int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	users := repository.NewGormUserRepository(db)
	salesRepo := repository.NewGormSalesRepository(db)
	log := logger.NewNop()
	return fixture{
		auth:  NewAuthService(users, bcrypt.MinCost, log),
		sales: NewSalesService(salesRepo, users, log),
		count: func(email string) int64 {
			var n int64
			require.NoError(t, db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error)
			return n
		},
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ok, err := f.auth.CreateUser(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.auth.CreateUser(ctx, "Ann Again", "ann@example.com", "another")
	require.NoError(t, err)
	assert.False(t, ok)

	// 大小写和空白不影响唯一性
	ok, err = f.auth.CreateUser(ctx, "Ann Upper", "  ANN@example.com ", "another")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int64(1), f.count("ann@example.com"))
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := map[string][3]string{
		"missing name":   {"", "a@example.com", "secret1"},
		"bad email":      {"A", "not-an-email", "secret1"},
		"short password": {"A", "a@example.com", "123"},
		// 40 个字符但 80 字节
		"long password":  {"A", "a@example.com", strings.Repeat("é", 40)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			ok, err := f.auth.CreateUser(ctx, c[0], c[1], c[2])
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(0), f.count("a@example.com"))
}

func TestVerifyUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.CreateUser(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.auth.CreateUser(ctx, "Bob", "bob@example.com", "secret2")
	require.NoError(t, err)

	annID, ok, err := f.auth.VerifyUser(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.True(t, ok)

	bobID, ok, err := f.auth.VerifyUser(ctx, "Bob@Example.com", "secret2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, annID, bobID)

	user, err := f.auth.GetUser(ctx, annID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	t.Run("wrong password", func(t *testing.T) {
		id, ok, err := f.auth.VerifyUser(ctx, "ann@example.com", "secret2")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, id)
	})

	t.Run("unknown email", func(t *testing.T) {
		id, ok, err := f.auth.VerifyUser(ctx, "carol@example.com", "secret1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, id)
	})

	t.Run("unknown user id", func(t *testing.T) {
		_, err := f.auth.GetUser(ctx, 9999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestSalesDataIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.CreateUser(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	_, err = f.auth.CreateUser(ctx, "Bob", "bob@example.com", "secret2")
	require.NoError(t, err)
	ann, _, _ := f.auth.VerifyUser(ctx, "ann@example.com", "secret1")
	bob, _, _ := f.auth.VerifyUser(ctx, "bob@example.com", "secret2")

	require.NoError(t, f.sales.AddSalesData(ctx, ann, day("2024-01-10"), 100, models.PlatformFacebook, "Spring"))
	require.NoError(t, f.sales.AddSalesData(ctx, bob, day("2024-01-11"), 500, models.PlatformTwitter, "Bob's"))
	require.NoError(t, f.sales.AddSalesData(ctx, ann, day("2024-01-12"), 50.5, models.PlatformInstagram, "Spring"))
	require.NoError(t, f.sales.AddSalesData(ctx, ann, day("2024-01-01"), 0, models.PlatformLinkedIn, ""))

	records, err := f.sales.GetUserSalesData(ctx, ann)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, ann, r.UserID)
		if i > 0 {
			assert.False(t, r.Date.After(records[i-1].Date), "records must be date descending")
		}
	}
	assert.Equal(t, 50.5, records[0].Revenue)

	n, err := f.sales.CountUserSalesData(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAddSalesDataRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.auth.CreateUser(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	ann, _, _ := f.auth.VerifyUser(ctx, "ann@example.com", "secret1")

	err = f.sales.AddSalesData(ctx, ann, day("2024-01-10"), -1, models.PlatformFacebook, "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = f.sales.AddSalesData(ctx, ann, day("2024-01-10"), 10, models.Platform("MySpace"), "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = f.sales.AddSalesData(ctx, ann, time.Time{}, 10, models.PlatformFacebook, "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = f.sales.AddSalesData(ctx, 9999, day("2024-01-10"), 10, models.PlatformFacebook, "x")
	assert.ErrorIs(t, err, ErrUserNotFound)

	records, err := f.sales.GetUserSalesData(ctx, ann)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.auth.CreateUser(ctx, "Ann", "ann@example.com", "secret1")
	require.NoError(t, err)
	ann, _, _ := f.auth.VerifyUser(ctx, "ann@example.com", "secret1")

	require.NoError(t, f.sales.AddSalesData(ctx, ann, day("2024-01-10"), 100, models.PlatformFacebook, "Spring"))
	require.NoError(t, f.sales.AddSalesData(ctx, ann, day("2024-02-01"), 25.5, models.PlatformLinkedIn, "Launch"))

	var buf bytes.Buffer
	require.NoError(t, f.sales.ExportCSV(ctx, ann, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,revenue,platform,campaign", lines[0])
	assert.Equal(t, "2024-02-01,25.5,LinkedIn,Launch", lines[1])
	assert.Equal(t, "2024-01-10,100,Facebook,Spring", lines[2])
}
