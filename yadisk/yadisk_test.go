package yadisk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type disk struct {
	srv       *httptest.Server
	files     map[string]string
	dirs      map[string]bool
	created   []string
	published map[string]bool
	auth      []string
}

func newDisk(t *testing.T) *disk {
	d := &disk{
		files:     map[string]string{},
		dirs:      map[string]bool{},
		published: map[string]bool{},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/v1/disk/resources/upload", func(w http.ResponseWriter, r *http.Request) {
		d.auth = append(d.auth, r.Header.Get("Authorization"))
		path := r.URL.Query().Get("path")
		if _, ok := d.files[path]; ok && r.URL.Query().Get("overwrite") != "true" {
			w.WriteHeader(http.StatusConflict)
			io.WriteString(w, `{"error":"DiskResourceAlreadyExistsError","message":"Resource already exists","description":"already exists"}`)
			return
		}

		io.WriteString(w, `{"href":"`+d.srv.URL+`/upload?path=`+path+`","method":"PUT","templated":false}`)
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		d.files[r.URL.Query().Get("path")] = string(b)
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/v1/disk/resources/publish", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if _, ok := d.files[path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":"DiskNotFoundError","message":"Resource not found","description":"not found"}`)
			return
		}

		d.published[path] = true
		io.WriteString(w, `{"href":"`+d.srv.URL+`/v1/disk/resources?path=`+path+`","method":"GET"}`)
	})

	mux.HandleFunc("/v1/disk/resources", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Query().Get("path")
		if r.Method == http.MethodPut {
			if d.dirs[path] {
				w.WriteHeader(http.StatusConflict)
				io.WriteString(w, `{"error":"DiskPathPointsToExistentDirectoryError","message":"Directory already exists"}`)
				return
			}

			d.dirs[path] = true
			d.created = append(d.created, path)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"href":"`+d.srv.URL+`/v1/disk/resources?path=`+path+`","method":"GET"}`)
			return
		}

		if d.published[path] {
			io.WriteString(w, `{"public_url":"https://yadi.sk/d/`+filepath.Base(path)+`"}`)
		} else {
			io.WriteString(w, `{"path":"`+path+`"}`)
		}
	})

	d.srv = httptest.NewServer(mux)
	t.Cleanup(d.srv.Close)

	return d
}

func (d *disk) client() *Client {
	return &Client{
		BaseURL: d.srv.URL + "/v1/disk",
		Token:   "y-token",
		HTTP:    d.srv.Client(),
	}
}

func TestUploadAndPublish(t *testing.T) {
	d := newDisk(t)
	c := d.client()

	local := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(local, []byte("a,b\n1,2\n"), 0600))

	require.NoError(t, c.Upload(context.Background(), local, "/exports/grades.csv", true))
	assert.Equal(t, "a,b\n1,2\n", d.files["/exports/grades.csv"])
	assert.Equal(t, []string{"OAuth y-token"}, d.auth)

	link, err := c.Publish(context.Background(), "/exports/grades.csv")
	require.NoError(t, err)
	assert.Equal(t, "https://yadi.sk/d/grades.csv", link)
}

func TestUploadConflict(t *testing.T) {
	d := newDisk(t)
	d.files["/exports/grades.csv"] = "old"

	local := filepath.Join(t.TempDir(), "grades.csv")
	require.NoError(t, os.WriteFile(local, []byte("new"), 0600))

	err := d.client().Upload(context.Background(), local, "/exports/grades.csv", false)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "DiskResourceAlreadyExistsError", apiErr.Code)
	assert.Equal(t, "old", d.files["/exports/grades.csv"])
}

func TestUploadMissingLocalFile(t *testing.T) {
	d := newDisk(t)

	err := d.client().Upload(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), "/exports/missing.csv", true)
	assert.Error(t, err)
}

func TestPublishMissingFile(t *testing.T) {
	d := newDisk(t)

	_, err := d.client().Publish(context.Background(), "/exports/missing.csv")

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "Resource not found")
}

func TestMkdirAll(t *testing.T) {
	tests := []struct {
		dir      string
		existing []string
		expected []string
	}{
		{"grades/2025/spring", nil, []string{"grades", "grades/2025", "grades/2025/spring"}},
		{"/grades/2025", []string{"/grades"}, []string{"/grades/2025"}},
		{"disk:/grades/2025", []string{"disk:/grades"}, []string{"disk:/grades/2025"}},
		{"/grades/", []string{"/grades"}, nil},
	}

	for _, test := range tests {
		d := newDisk(t)
		for _, dir := range test.existing {
			d.dirs[dir] = true
		}

		if err := d.client().MkdirAll(context.Background(), test.dir); err != nil {
			t.Fatalf("Unexpected error creating %v (%v)", test.dir, err)
		}

		assert.Equal(t, test.expected, d.created, test.dir)
	}
}
