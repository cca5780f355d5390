package inventory

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	gormDB, mock := setupMockDB(t)

	app := fiber.New()
	handler := NewHandler(NewService(gormDB, zap.NewNop()))
	handler.RegisterRoutes(app)

	return app, mock
}

func deviceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "slug", "disk_total", "disk_used", "disk_free"})
}

func decodeBody(t *testing.T, resp io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestHandleListDevices(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows().
			AddRow(1, "Donation", "donation", 1000, 600, 400).
			AddRow(2, "Goodies", "goodies", 2000, 100, 1900))

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var devices []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&devices))
	require.Len(t, devices, 2)
	assert.Equal(t, "donation", devices[0]["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetDevice(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WithArgs("donation", 1).
		WillReturnRows(deviceRows().AddRow(1, "Donation", "donation", 1000, 600, 400))
	mock.ExpectQuery("SELECT \\* FROM `directories`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "path", "title", "checksum"}).
			AddRow(10, 1, "series/BillyBoy", "BillyBoy", "001"))

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/donation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	device := body["device"].(map[string]any)
	assert.Equal(t, "donation", device["slug"])
	directories := body["directories"].([]any)
	require.Len(t, directories, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetDevice_UnknownSlug(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows())

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "unknown device slug: nope", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleGetTree(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows().AddRow(1, "Donation", "donation", 1000, 600, 400))
	mock.ExpectQuery("SELECT directories\\.path AS path").
		WillReturnRows(sqlmock.NewRows([]string{"path", "total_files", "total_filesize"}).
			AddRow("/home/a", 1, 5).
			AddRow("/home/b/bb", 2, 16))

	resp, err := app.Test(httptest.NewRequest("GET", "/devices/donation/tree", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	tree := body["tree"].(map[string]any)
	assert.Equal(t, "/home", tree["path"])
	assert.Equal(t, float64(3), tree["recursive_files"])
	assert.Equal(t, float64(21), tree["recursive_filesize"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleTreeExport(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows().AddRow(1, "Donation", "donation", 1000, 600, 400))

	payload := `{"action": "list-text", "data": {"paths": [{"path": "/b"}, {"path": "/a"}]}}`
	req := httptest.NewRequest("POST", "/devices/donation/tree/export", strings.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "/a\n/b", body["content"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleTreeExport_InvalidJSON(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows().AddRow(1, "Donation", "donation", 1000, 600, 400))

	req := httptest.NewRequest("POST", "/devices/donation/tree/export", strings.NewReader("{nope"))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "Request contains invalid JSON", body["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleTreeExport_UnknownAction(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `devices`").
		WillReturnRows(deviceRows().AddRow(1, "Donation", "donation", 1000, 600, 400))

	payload := `{"action": "nope", "data": {}}`
	req := httptest.NewRequest("POST", "/devices/donation/tree/export", strings.NewReader(payload))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Contains(t, body["error"], "must be an available action")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleListMediaFiles(t *testing.T) {
	app, mock := setupApp(t)

	mock.ExpectQuery("SELECT \\* FROM `media_files`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "directory_id", "path", "filename", "filesize"}).
			AddRow(1, 10, "/videos/a.mkv", "a.mkv", 100))

	resp, err := app.Test(httptest.NewRequest("GET", "/media?directory_id=10&limit=10", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var files []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&files))
	require.Len(t, files, 1)
	assert.Equal(t, "a.mkv", files[0]["filename"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
