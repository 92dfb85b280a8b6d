package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clef-app/clef/internal/domain"
)

func (h *Handler) ListPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Catalogue.ListPersons(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, persons)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalogue.GetPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if p == nil {
		http.NotFound(w, r)
		return
	}
	h.respondJSON(w, p)
}

func (h *Handler) PostPerson(w http.ResponseWriter, r *http.Request) {
	var p domain.Person
	if err := decode(r, &p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Catalogue.UpsertPerson(r.Context(), p); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.Catalogue.ListInstruments(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, instruments)
}

func (h *Handler) GetInstrument(w http.ResponseWriter, r *http.Request) {
	ins, err := h.Catalogue.GetInstrument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if ins == nil {
		http.NotFound(w, r)
		return
	}
	h.respondJSON(w, ins)
}

func (h *Handler) PostInstrument(w http.ResponseWriter, r *http.Request) {
	var ins domain.Instrument
	if err := decode(r, &ins); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Catalogue.UpsertInstrument(r.Context(), ins); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) ListEnsembles(w http.ResponseWriter, r *http.Request) {
	ensembles, err := h.Catalogue.ListEnsembles(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, ensembles)
}

func (h *Handler) GetEnsemble(w http.ResponseWriter, r *http.Request) {
	e, err := h.Catalogue.GetEnsemble(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if e == nil {
		http.NotFound(w, r)
		return
	}
	h.respondJSON(w, e)
}

func (h *Handler) PostEnsemble(w http.ResponseWriter, r *http.Request) {
	var e domain.Ensemble
	if err := decode(r, &e); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Catalogue.UpsertEnsemble(r.Context(), e); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetWork(w http.ResponseWriter, r *http.Request) {
	ins, err := h.Catalogue.ExportWork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if ins == nil {
		http.NotFound(w, r)
		return
	}
	h.respondJSON(w, ins)
}

func (h *Handler) ListWorksByComposer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	works, err := h.Catalogue.ListWorksByComposer(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]domain.WorkInsertion, 0, len(works))
	for _, work := range works {
		ins, err := h.Catalogue.ExportWork(ctx, work.ID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if ins != nil {
			out = append(out, *ins)
		}
	}
	h.respondJSON(w, out)
}

func (h *Handler) PostWork(w http.ResponseWriter, r *http.Request) {
	var ins domain.WorkInsertion
	if err := decode(r, &ins); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Catalogue.UpsertWork(r.Context(), ins); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetRecording(w http.ResponseWriter, r *http.Request) {
	ins, err := h.Catalogue.ExportRecording(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if ins == nil {
		http.NotFound(w, r)
		return
	}
	h.respondJSON(w, ins)
}

func (h *Handler) ListRecordingsByWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordings, err := h.Catalogue.ListRecordingsByWork(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]domain.RecordingInsertion, 0, len(recordings))
	for _, rec := range recordings {
		ins, err := h.Catalogue.ExportRecording(ctx, rec.ID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if ins != nil {
			out = append(out, *ins)
		}
	}
	h.respondJSON(w, out)
}

func (h *Handler) PostRecording(w http.ResponseWriter, r *http.Request) {
	var ins domain.RecordingInsertion
	if err := decode(r, &ins); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ins.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Catalogue.UpsertRecording(r.Context(), ins); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
