package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"github.com/vocdoni/modelpass/attribution"
	"github.com/vocdoni/modelpass/db/metadb"
	"github.com/vocdoni/modelpass/internal"
	"github.com/vocdoni/modelpass/internal/testutil"
	stg "github.com/vocdoni/modelpass/storage"
	"github.com/vocdoni/modelpass/toolkit"
	"github.com/vocdoni/modelpass/types"
)

// newTestAPI builds an API over a fresh registry and a fake toolkit
// pipeline, without binding a listener.
func newTestAPI(t *testing.T) *API {
	t.Helper()
	store := stg.New(metadb.NewTest(t))

	tk, err := toolkit.New(toolkit.Options{Bin: testutil.FakeToolkit(t)})
	if err != nil {
		t.Fatalf("could not create toolkit: %v", err)
	}
	a := &API{storage: store, pipeline: attribution.New(tk, "")}
	a.initRouter()
	return a
}

// doRequest routes one request through the full middleware stack and
// returns the recorded response.
func doRequest(t *testing.T, a *API, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("could not marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	return rr
}

// decodeResponse unmarshals a recorded JSON body into out.
func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("could not decode response %q: %v", rr.Body.String(), err)
	}
}

// apiError mirrors the error wire shape for assertions.
type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func testHash(b byte) string {
	return strings.Repeat(hex.EncodeToString([]byte{b}), 32)
}

func testPassport(seed byte) *types.Passport {
	return &types.Passport{
		ModelIdentityHash: testHash(seed),
		GenerationDate:    types.FormatGenerationDate(time.Now()),
		ToolkitVersion:    testutil.FakeToolkitVersion,
		ModelMetadata: types.ModelMetadata{
			Name:      "model",
			SizeBytes: 2048,
		},
		IdentityDetails: types.IdentityDetails{
			VKHash:       testHash(seed + 1),
			SettingsHash: testHash(seed + 2),
			WeightHash:   testHash(seed + 3),
		},
	}
}

func testCertificate(certificateID, modelID string) *types.AttributionCertificate {
	return &types.AttributionCertificate{
		CertificateID:  certificateID,
		ModelID:        modelID,
		GenerationDate: types.FormatGenerationDate(time.Now()),
		Proof:          json.RawMessage(`{"proof":"aabb"}`),
		Settings:       json.RawMessage(`{"run_args":{}}`),
		VK:             types.HexBytes{0x01, 0x02},
	}
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(t)

	rr := doRequest(t, a, http.MethodGet, PingEndpoint, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)
}

func TestInfoEndpoint(t *testing.T) {
	c := qt.New(t)
	a := newTestAPI(t)

	c.Assert(a.storage.SetPassport(testPassport(0x10)), qt.IsNil)
	c.Assert(a.storage.SetCertificate(testCertificate(uuid.NewString(), testHash(0x10))), qt.IsNil)

	rr := doRequest(t, a, http.MethodGet, InfoEndpoint, nil)
	c.Assert(rr.Code, qt.Equals, http.StatusOK)

	var info InfoResponse
	decodeResponse(t, rr, &info)
	c.Assert(info.Version, qt.Equals, internal.Version)
	c.Assert(info.ToolkitBin, qt.Equals, a.pipeline.Toolkit().Bin())
	c.Assert(info.ToolkitVersion, qt.Equals, testutil.FakeToolkitVersion)
	c.Assert(info.Passports, qt.Equals, 1)
	c.Assert(info.Certificates, qt.Equals, 1)
}
