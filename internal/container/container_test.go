package container

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xlinventory/adapters/excel"
	"xlinventory/domain/inventory"
	"xlinventory/internal/config"
	"xlinventory/internal/errors"
	"xlinventory/ports"
)

func testConfig() *config.Config {
	return &config.Config{
		Log:      config.LogConfig{Level: "ERROR"},
		Settings: config.SettingsConfig{File: config.DefaultSettingsFile},
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, "", nil)
	require.Error(t, err)
}

func TestSourceKind(t *testing.T) {
	dir := t.TempDir()

	s := inventory.NewSettings()
	s.InventoryFile = filepath.Join(dir, "inventory.xlsx")
	assert.Equal(t, SourceXLSX, SourceKind(s))

	s.InventoryFile = dir
	assert.Equal(t, SourceCSV, SourceKind(s))

	s.InventoryTables = []string{"hosts"}
	assert.Equal(t, SourcePostgres, SourceKind(s))
}

func TestSourceFor_FileSource(t *testing.T) {
	c, err := New(testConfig(), "", nil)
	require.NoError(t, err)

	s := inventory.NewSettings()
	s.InventoryFile = t.TempDir()

	source, err := c.SourceFor(context.Background(), s)
	require.NoError(t, err)
	assert.IsType(t, &excel.DataReader{}, source)
	assert.Equal(t, s.InventoryFile, source.Describe())
}

func TestSourceFor_PostgresNeedsDatabaseURL(t *testing.T) {
	c, err := New(testConfig(), "", nil)
	require.NoError(t, err)

	s := inventory.NewSettings()
	s.InventoryTables = []string{"hosts"}

	_, err = c.SourceFor(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

type ctxKey struct{}

func TestSourceFor_PostgresConnects(t *testing.T) {
	cfg := testConfig()
	cfg.Database.URL = "postgres://localhost/inventory"

	c, err := New(cfg, "", nil)
	require.NoError(t, err)

	var gotURL string
	var gotTables []string
	var gotOrder map[string][]string
	var gotCtx context.Context
	c.connect = func(ctx context.Context, url string, tables []string, orderBy map[string][]string) (ports.SheetSourcePort, error) {
		gotCtx, gotURL, gotTables, gotOrder = ctx, url, tables, orderBy
		return excel.NewExcelReader("unused"), nil
	}

	s := inventory.NewSettings()
	s.InventoryTables = []string{"hosts", "web"}
	s.InventoryOrderBy = map[string][]string{"hosts": {"id"}}

	ctx := context.WithValue(context.Background(), ctxKey{}, "build")
	_, err = c.SourceFor(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.URL, gotURL)
	assert.Equal(t, []string{"hosts", "web"}, gotTables)
	assert.Equal(t, map[string][]string{"hosts": {"id"}}, gotOrder)
	assert.Equal(t, "build", gotCtx.Value(ctxKey{}))
}

func TestContainer_CancelledBuildSkipsConnect(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "common_val.yml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("inventory_tables: [hosts]\n"), 0o644))

	cfg := testConfig()
	cfg.Database.URL = "postgres://localhost/inventory"
	c, err := New(cfg, settingsPath, nil)
	require.NoError(t, err)

	c.connect = func(ctx context.Context, _ string, _ []string, _ map[string][]string) (ports.SheetSourcePort, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, stderrors.New("connect should see the cancelled context")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Service.Build(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContainer_RunsCallerCustomizer(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "hosts.csv"),
		[]byte("host_name,group\nweb1,web\n"), 0o644))

	settingsPath := filepath.Join(dir, "common_val.yml")
	require.NoError(t, os.WriteFile(settingsPath,
		[]byte("inventory_file: "+data+"\nspecific_vars:\n  extra_group: edge\n"), 0o644))

	calls := 0
	hook := ports.CustomizerFunc(func(_ context.Context, cz *inventory.Customization) error {
		calls++
		name, _ := cz.SpecificVars.Get("extra_group")
		cz.Membership.Set(name.(string), []string{"web1"})
		return nil
	})

	c, err := New(testConfig(), settingsPath, hook)
	require.NoError(t, err)

	doc, err := c.Service.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	edge, ok := doc.Groups.Get("edge")
	require.True(t, ok)
	assert.Equal(t, []string{"web1"}, edge.Hosts)
}

func TestContainer_BuildFromCSVDirectory(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "hosts.csv"),
		[]byte("host_name,group,ip\nweb1,web,10.0.0.1\n"), 0o644))

	settingsPath := filepath.Join(dir, "common_val.yml")
	require.NoError(t, os.WriteFile(settingsPath,
		[]byte("inventory_file: "+data+"\ngroup_vars:\n  web:\n    http_port: 80\n"), 0o644))

	c, err := New(testConfig(), settingsPath, nil)
	require.NoError(t, err)

	doc, err := c.Service.Build(context.Background())
	require.NoError(t, err)

	web, ok := doc.Groups.Get("web")
	require.True(t, ok)
	assert.Equal(t, []string{"web1"}, web.Hosts)
	port, _ := web.Vars.Get("http_port")
	assert.Equal(t, int64(80), port)

	hv, ok := doc.HostVars.Get("web1")
	require.True(t, ok)
	ip, _ := hv.Get("ip")
	assert.Equal(t, "10.0.0.1", ip)
}
