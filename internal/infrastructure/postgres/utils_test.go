package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_CodigosTransitorios(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03", "57014"} {
		err := classify(fmt.Errorf("update stock: %w", &pgconn.PgError{Code: code}))
		assert.ErrorIs(t, err, domain.ErrTransientStore, code)
		assert.True(t, domain.IsRetryable(err), code)
	}
}

func TestClassify_DeadlineEsTransitorio(t *testing.T) {
	err := classify(fmt.Errorf("commit: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, domain.ErrTransientStore)
}

func TestClassify_ErroresDeNegocioSinCambio(t *testing.T) {
	biz := fmt.Errorf("%w: producto p1", domain.ErrInsufficientStock)
	assert.Same(t, biz, classify(biz))
	assert.NoError(t, classify(nil))

	unique := &pgconn.PgError{Code: "23505"}
	err := classify(unique)
	assert.NotErrorIs(t, err, domain.ErrTransientStore)
	assert.True(t, isUniqueViolation(err))
	assert.False(t, isCheckViolation(err))
}

func TestClassify_NoEnvuelveDosVeces(t *testing.T) {
	once := classify(&pgconn.PgError{Code: "40001"})
	assert.Same(t, once, classify(once))
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, isCheckViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514"})))
	assert.False(t, isCheckViolation(errors.New("23514")))
}

func TestParseID_NormalizaYRechaza(t *testing.T) {
	id, ok := parseID("6F9619FF-8B86-D011-B42D-00C04FC964FF")
	require.True(t, ok)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", id)

	for _, bad := range []string{"", "abc", "1", "6f9619ff-8b86-d011-b42d"} {
		_, ok := parseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestLockTimeoutFor_RepartePresupuesto(t *testing.T) {
	assert.Equal(t, 5*time.Second/3, lockTimeoutFor(5*time.Second, 3))
	assert.Less(t, lockTimeoutFor(5*time.Second, 3), 5*time.Second)
	assert.Equal(t, 2*time.Second, lockTimeoutFor(2*time.Second, 0))
	assert.Equal(t, minLockTimeout, lockTimeoutFor(100*time.Millisecond, 10))
}

func TestNewTxRunner_LockTimeoutMenorQueTimeout(t *testing.T) {
	r := NewTxRunner(nil, TxOptions{Timeout: 3 * time.Second, MaxAttempts: 3})
	assert.Equal(t, time.Second, r.lockTimeout)
	assert.Less(t, r.lockTimeout, r.timeout)
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	v := nullIfEmpty("nota")
	require.NotNil(t, v)
	assert.Equal(t, "nota", derefString(v))
	assert.Equal(t, "", derefString(nil))
}

func TestLoadMigrations_OrdenaYFiltra(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_events.up.sql": {Data: []byte("CREATE TABLE b();")},
		"m/0001_init.up.sql":   {Data: []byte("CREATE TABLE a();")},
		"m/0001_init.down.sql": {Data: []byte("DROP TABLE a;")},
		"m/README.md":          {Data: []byte("x")},
	}
	migrations, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, int64(2), migrations[1].Version)
}

func TestLoadMigrations_VersionDuplicada(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.up.sql": {Data: []byte("SELECT 1;")},
		"m/001_b.up.sql":  {Data: []byte("SELECT 1;")},
	}
	_, err := loadMigrations(fsys, "m")
	require.Error(t, err)
}

func TestLoadMigrations_Embebidas(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Contains(t, migrations[0].SQL, "sale_number_seq")
}
