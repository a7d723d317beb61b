package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
)

// fakeInflux answers /ping and records line protocol sent to /api/v2/write.
type fakeInflux struct {
	mu     sync.Mutex
	lines  []string
	query  []string
	status int
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lines = append(f.lines, strings.Split(strings.TrimSpace(string(body)), "\n")...)
		f.query = append(f.query, r.URL.RawQuery)
		status := f.status
		f.mu.Unlock()
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
	default:
		http.NotFound(w, r)
	}
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled: true,
		URL:     url,
		Token:   "test-token",
		Org:     "home",
		Bucket:  "lovelace",
	}
}

func TestConnect_Disabled(t *testing.T) {
	if _, err := Connect(context.Background(), config.InfluxDBConfig{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	if _, err := Connect(context.Background(), testConfig(srv.URL)); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestWriteGeneration(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	client.WriteGeneration(Generation{Site: "home", Source: "api", Language: "en", Views: 4, Duration: 120 * time.Millisecond})
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.lines) != 1 || !strings.HasPrefix(fake.lines[0], MeasurementGeneration+",") {
		t.Fatalf("lines = %q", fake.lines)
	}
	if !strings.Contains(fake.query[0], "bucket=lovelace") || !strings.Contains(fake.query[0], "org=home") {
		t.Errorf("write query = %q", fake.query[0])
	}
}

func TestWriteGeneration_AfterClose(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	_ = client.Close()
	client.WriteGeneration(Generation{Source: "cli"})
	client.Flush()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
	if len(fake.lines) != 0 {
		t.Errorf("lines written after Close: %q", fake.lines)
	}
}

func TestWriteGeneration_ErrorCallback(t *testing.T) {
	fake := &fakeInflux{status: http.StatusBadRequest}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	got := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case got <- err:
		default:
		}
	})
	client.WriteGeneration(Generation{Source: "mqtt"})
	client.Flush()

	select {
	case err := <-got:
		if err == nil {
			t.Error("callback received nil error")
		}
	case <-time.After(5 * time.Second):
		t.Error("write error not reported")
	}
	_ = client.Close()
}

func TestGenerationPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		gen  Generation
		want string
	}{
		{
			name: "successful run",
			gen:  Generation{Site: "home", Source: "cli", Language: "en", Views: 12, Areas: 4, Entities: 80, Cards: 140, Duration: 250 * time.Millisecond, At: at},
			want: "dashboard_generation,language=en,site=home,source=cli,status=ok areas=4i,cards=140i,duration_ms=250i,entities=80i,views=12i 1772366400000000000",
		},
		{
			name: "failed run",
			gen:  Generation{Site: "home", Source: "api", Language: "de", Failed: true, At: at},
			want: "dashboard_generation,language=de,site=home,source=api,status=failed areas=0i,cards=0i,duration_ms=0i,entities=0i,views=0i 1772366400000000000",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(write.PointToLineProtocol(generationPoint(tt.gen), time.Nanosecond))
			if got != tt.want {
				t.Errorf("line protocol =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}
