package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devstack-tools/localconf/config"
	"github.com/devstack-tools/localconf/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newHolder(t *testing.T, content string) (*Holder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.conf")
	writeConf(t, path, content)
	h, err := NewHolder(path)
	require.NoError(t, err)
	return h, path
}

func get(t *testing.T, handler http.Handler, method string, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHolderKeepsLastGoodSnapshot(t *testing.T) {
	h, path := newHolder(t, "[[local|localrc]]\nADMIN_PASSWORD=one\n")
	first := h.Get()
	v, _ := first.Config.Get("ADMIN_PASSWORD")
	assert.Equal(t, "one", v)

	writeConf(t, path, "[[local|localrc]]\nADMIN_PASSWORD=$MISSING\n")
	err := h.Reload()
	require.Error(t, err)
	assert.True(t, config.IsUnresolved(err))
	assert.Same(t, first, h.Get())

	loads, failures, lastErr := h.Stats()
	assert.Equal(t, uint64(2), loads)
	assert.Equal(t, uint64(1), failures)
	assert.Error(t, lastErr)

	writeConf(t, path, "[[local|localrc]]\nADMIN_PASSWORD=two\n")
	require.NoError(t, h.Reload())
	v, _ = h.Get().Config.Get("ADMIN_PASSWORD")
	assert.Equal(t, "two", v)
	_, _, lastErr = h.Stats()
	assert.NoError(t, lastErr)
}

func TestHolderConcurrentReload(t *testing.T) {
	h, path := newHolder(t, "[[local|localrc]]\nADMIN_PASSWORD=0\n")

	const versions = 20
	const readers = 8
	const rounds = 25

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_ = h.Reload()
			}
		}()
	}
	for v := 1; v <= versions; v++ {
		tmp := path + ".tmp"
		writeConf(t, tmp, "[[local|localrc]]\nADMIN_PASSWORD="+strconv.Itoa(v)+"\n")
		require.NoError(t, os.Rename(tmp, path))
		require.NoError(t, h.Reload())
	}
	wg.Wait()

	v, _ := h.Get().Config.Get("ADMIN_PASSWORD")
	assert.Equal(t, strconv.Itoa(versions), v)
	loads, failures, _ := h.Stats()
	assert.Equal(t, uint64(1+versions+readers*rounds), loads)
	assert.Zero(t, failures)
}

func TestNewHolderFails(t *testing.T) {
	_, err := NewHolder(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)
}

func TestHolderWatch(t *testing.T) {
	h, path := newHolder(t, "[[local|localrc]]\nADMIN_PASSWORD=one\n")
	h.Debounce = 10 * time.Millisecond

	updates := make(chan *Snapshot, 1)
	h.Subscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()

	// wait for the watcher before changing the file
	time.Sleep(100 * time.Millisecond)
	writeConf(t, path, "[[local|localrc]]\nADMIN_PASSWORD=two\n")

	select {
	case s := <-updates:
		v, _ := s.Config.Get("ADMIN_PASSWORD")
		assert.Equal(t, "two", v)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the file changed")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestRestConfig(t *testing.T) {
	h, _ := newHolder(t, config.Sample)
	handler := NewConfigRestful(h).CreateHandler()

	rec := get(t, handler, "GET", "/config")
	require.Equal(t, http.StatusOK, rec.Code)
	vars := make(map[string]string)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vars))
	assert.Equal(t, "password", vars["DATABASE_PASSWORD"])
	assert.Equal(t, "ironic", vars["VIRT_DRIVER"])

	rec = get(t, handler, "GET", "/config?format=shell")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "export FIXED_RANGE=10.1.0.0/24\n")

	rec = get(t, handler, "GET", "/config/IRONIC_VM_COUNT")
	require.Equal(t, http.StatusOK, rec.Code)
	one := struct {
		Key         string              `json:"key"`
		Value       string              `json:"value"`
		Assignments []config.Assignment `json:"assignments"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
	assert.Equal(t, "3", one.Value)
	require.Len(t, one.Assignments, 1)

	rec = get(t, handler, "GET", "/config/NOT_SET")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRestServicesAndPlugins(t *testing.T) {
	h, _ := newHolder(t, config.Sample)
	handler := NewConfigRestful(h).CreateHandler()

	rec := get(t, handler, "GET", "/services")
	require.Equal(t, http.StatusOK, rec.Code)
	svcs := make(map[string][]string)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svcs))
	assert.Contains(t, svcs["enabled"], "s-proxy")
	assert.NotContains(t, svcs["enabled"], "horizon")
	assert.Contains(t, svcs["disabled"], "n-novnc")

	rec = get(t, handler, "GET", "/plugins")
	require.Equal(t, http.StatusOK, rec.Code)
	plugins := make([]services.Plugin, 0)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plugins))
	require.Len(t, plugins, 1)
	assert.Equal(t, "ironic", plugins[0].Name)
	assert.Equal(t, "https://opendev.org/openstack/ironic", plugins[0].URL)
}

func TestRestSectionsAndCheck(t *testing.T) {
	h, _ := newHolder(t, config.Sample)
	handler := NewConfigRestful(h).CreateHandler()

	rec := get(t, handler, "GET", "/sections")
	require.Equal(t, http.StatusOK, rec.Code)
	sections := make([]sectionInfo, 0)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.Len(t, sections, 2)
	assert.Equal(t, "localrc", sections[0].File)
	assert.Equal(t, "/etc/ironic/ironic.conf", sections[1].Target)

	rec = get(t, handler, "GET", "/check")
	require.Equal(t, http.StatusOK, rec.Code)
	report := struct {
		File     string        `json:"file"`
		Findings []interface{} `json:"findings"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, h.Path(), report.File)
	assert.Empty(t, report.Findings)
}

func TestRestReload(t *testing.T) {
	h, path := newHolder(t, "[[local|localrc]]\nA=1\n")
	handler := NewConfigRestful(h).CreateHandler()

	writeConf(t, path, "[[local|localrc]]\nA=2\n")
	rec := get(t, handler, "POST", "/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	v, _ := h.Get().Config.Get("A")
	assert.Equal(t, "2", v)

	writeConf(t, path, "[[local|localrc]]\nA='unterminated\n")
	rec = get(t, handler, "POST", "/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	v, _ = h.Get().Config.Get("A")
	assert.Equal(t, "2", v)

	rec = get(t, handler, "GET", "/reload")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRestMetrics(t *testing.T) {
	h, _ := newHolder(t, config.Sample)
	handler := NewConfigRestful(h).CreateHandler()

	rec := get(t, handler, "GET", "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "localconf_config_plugins{")
	assert.Contains(t, body, `localconf_config_service_enabled{file="`+h.Path()+`",service="s-proxy"} 1`)
	assert.Contains(t, body, `localconf_config_findings{file="`+h.Path()+`",severity="error"} 0`)
	assert.Contains(t, body, `localconf_config_loads_total{file="`+h.Path()+`"} 1`)
}

func TestHTTPServer(t *testing.T) {
	h, _ := newHolder(t, config.Sample)
	p := NewHTTPServer(h)
	assert.Nil(t, p.Addr())
	require.NoError(t, p.Listen("127.0.0.1:0"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Serve(ctx) }()

	resp, err := http.Get("http://" + p.Addr().String() + "/config/VIRT_DRIVER")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `"value":"ironic"`))

	cancel()
	assert.NoError(t, <-done)
}
