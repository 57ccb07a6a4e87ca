package enrichment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/cds-engine/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "enrichment")

func TestNewWithoutAPIKeyReturnsNoop(t *testing.T) {
	e := New(Config{}, zerolog.Nop(), testMetrics)
	_, ok := e.(Noop)
	assert.True(t, ok)
}

func TestNoopIsInert(t *testing.T) {
	var e Enricher = Noop{}

	suggestions, err := e.SuggestDiagnoses(context.Background(), CaseContext{})
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	cautions, err := e.ExtraContraindications(context.Background(), CaseContext{})
	require.NoError(t, err)
	assert.Empty(t, cautions)

	plan, err := e.RefineTreatment(context.Background(), CaseContext{}, "original plan")
	require.NoError(t, err)
	assert.Equal(t, "original plan", plan)

	text, err := e.RefineNarrative(context.Background(), CaseContext{}, "original text")
	require.NoError(t, err)
	assert.Equal(t, "original text", text)
}

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req["messages"])

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func TestSuggestDiagnosesParsesResponse(t *testing.T) {
	srv := chatServer(t, `{"suggestions":[{"code":"M54.5","confidence":88,"reasoning":"classic presentation"}]}`, http.StatusOK)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop(), testMetrics)
	got, err := e.SuggestDiagnoses(context.Background(), CaseContext{ChiefComplaint: "low back pain", Age: 45})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "M54.5", got[0].Code)
	assert.Equal(t, 88, got[0].Confidence)
	assert.Equal(t, "classic presentation", got[0].Reasoning)
}

func TestExtraContraindicationsParsesResponse(t *testing.T) {
	srv := chatServer(t, `{"cautions":[{"title":"Recent injection","detail":"confirm site healed"}]}`, http.StatusOK)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop(), testMetrics)
	got, err := e.ExtraContraindications(context.Background(), CaseContext{ProcedureName: "Diversified Technique"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Recent injection", got[0].Title)
}

func TestRefineTreatmentEmptyTextKeepsPlan(t *testing.T) {
	srv := chatServer(t, `{"text":""}`, http.StatusOK)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop(), testMetrics)
	got, err := e.RefineTreatment(context.Background(), CaseContext{}, "original plan")
	require.NoError(t, err)
	assert.Equal(t, "original plan", got)
}

func TestUpstreamErrorSurfaces(t *testing.T) {
	srv := chatServer(t, ``, http.StatusBadGateway)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop(), testMetrics)
	_, err := e.SuggestDiagnoses(context.Background(), CaseContext{})
	assert.Error(t, err)
}

func TestMalformedPayloadSurfaces(t *testing.T) {
	srv := chatServer(t, `not json at all`, http.StatusOK)
	defer srv.Close()

	e := New(Config{BaseURL: srv.URL, APIKey: "test-key"}, zerolog.Nop(), testMetrics)
	_, err := e.SuggestDiagnoses(context.Background(), CaseContext{})
	assert.Error(t, err)
}
