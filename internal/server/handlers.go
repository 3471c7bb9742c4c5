package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/symbolmap/internal/mapview"
	"github.com/sells-group/symbolmap/internal/symbol"
)

type datasetResponse struct {
	Features      int      `json:"features"`
	Series        []string `json:"series"`
	Groups        []string `json:"groups"`
	LabelProperty string   `json:"label_property"`
}

type legendResponse struct {
	Attribute string              `json:"attribute"`
	Legend    symbol.Legend       `json:"legend"`
	Stops     []symbol.LegendStop `json:"stops"`
}

type viewResponse struct {
	ID     string          `json:"id"`
	State  mapview.State   `json:"state"`
	Legend *legendResponse `json:"legend,omitempty"`
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	ds := s.reg.Dataset()
	writeJSON(w, http.StatusOK, datasetResponse{
		Features:      len(ds.Features),
		Series:        nonNil(ds.Series),
		Groups:        nonNil(ds.Groups),
		LabelProperty: ds.LabelProperty,
	})
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	attr := chi.URLParam(r, "attribute")
	v := s.reg.Detached()

	l, ok, err := v.LegendFor(attr)
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown attribute")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no data")
		return
	}

	resp, err := newLegendResponse(attr, l, v.Options().ScaleFactor)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "legend failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	attr := chi.URLParam(r, "attribute")
	if data := s.cache.Get(attr); data != nil {
		writeGeoJSONBytes(w, data, "HIT")
		return
	}
	v := s.reg.Detached()

	syms, err := v.SymbolsFor(attr)
	if err != nil {
		if eris.Is(err, mapview.ErrUnknownAttribute) {
			writeError(w, http.StatusNotFound, "unknown attribute")
			return
		}
		zap.L().Error("symbols failed", zap.String("attribute", attr), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "symbols failed")
		return
	}
	data, err := json.Marshal(mapview.FeatureCollection(syms, v.Options().Style))
	if err != nil {
		zap.L().Error("symbols encode failed", zap.String("attribute", attr), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "symbols failed")
		return
	}
	data = append(data, '\n')
	s.cache.Put(attr, data)
	writeGeoJSONBytes(w, data, "MISS")
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *Server) handlePurgeCache(w http.ResponseWriter, _ *http.Request) {
	s.cache.Purge()
	zap.L().Info("symbol cache purged")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateView(w http.ResponseWriter, _ *http.Request) {
	id, v := s.reg.Create()
	zap.L().Info("view created", zap.String("view_id", id))
	writeJSON(w, http.StatusCreated, s.viewResponse(id, v))
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.viewResponse(id, v))
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.reg.Delete(id) {
		writeError(w, http.StatusNotFound, "unknown view")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dir, err := symbol.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "direction must be forward or reverse")
		return
	}

	v.Step(dir)
	writeJSON(w, http.StatusOK, s.viewResponse(id, v))
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}

	var req struct {
		Index *int `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}
	if _, err := v.Seek(*req.Index); err != nil {
		writeError(w, http.StatusBadRequest, "index out of range")
		return
	}
	writeJSON(w, http.StatusOK, s.viewResponse(id, v))
}

func (s *Server) handleSelectGroup(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}

	var req struct {
		Group string `json:"group"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := v.SelectGroup(req.Group); err != nil {
		writeError(w, http.StatusNotFound, "unknown group")
		return
	}
	writeJSON(w, http.StatusOK, s.viewResponse(id, v))
}

func (s *Server) handleClearGroup(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}
	v.ClearGroup()
	writeJSON(w, http.StatusOK, s.viewResponse(id, v))
}

func (s *Server) handleViewSymbols(w http.ResponseWriter, r *http.Request) {
	id, v, ok := s.view(w, r)
	if !ok {
		return
	}
	syms, err := v.Symbols()
	if err != nil {
		zap.L().Error("view symbols failed", zap.String("view_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "symbols failed")
		return
	}
	writeGeoJSON(w, mapview.FeatureCollection(syms, v.Options().Style))
}

// view resolves the {id} URL parameter, writing a 404 when it is unknown.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (string, *mapview.MapView, bool) {
	id := chi.URLParam(r, "id")
	v, ok := s.reg.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown view")
		return "", nil, false
	}
	return id, v, true
}

func (s *Server) viewResponse(id string, v *mapview.MapView) viewResponse {
	st := v.State()
	resp := viewResponse{ID: id, State: st}

	attr := st.Attribute
	if st.Group != "" {
		attr = st.Group
	}
	if l, ok := v.Legend(); ok {
		if lr, err := newLegendResponse(attr, l, v.Options().ScaleFactor); err == nil {
			resp.Legend = &lr
		}
	}
	return resp
}

func newLegendResponse(attr string, l symbol.Legend, scale float64) (legendResponse, error) {
	stops, err := l.Stops(scale)
	if err != nil {
		return legendResponse{}, err
	}
	return legendResponse{Attribute: attr, Legend: l, Stops: stops}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
