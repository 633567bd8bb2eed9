package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anderovsky/ITStep-zrucnosti/internal/domain"
	"github.com/anderovsky/ITStep-zrucnosti/internal/service"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/logger"
)

// ListingHandler serves the listing index, creation, and detail pages.
type ListingHandler struct {
	listings *service.ListingService
	reviews  *service.ReviewService
	render   *Renderer
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(listings *service.ListingService, reviews *service.ReviewService, render *Renderer) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		reviews:  reviews,
		render:   render,
	}
}

// indexPage is the data for the index template.
type indexPage struct {
	page
	Query    string
	Listings []domain.Listing
}

// addPage is the data for the listing creation template.
type addPage struct {
	page
	FormTitle       string
	FormDescription string
	FormPrice       string
}

// detailPage is the data for the listing detail template.
type detailPage struct {
	page
	Listing     *domain.ListingDetail
	Reviews     []domain.ReviewDetail
	FormContent string
	FormRating  string
}

// Index renders the listing overview, optionally filtered by the q query
// parameter.
func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	listings, err := h.listings.Browse(r.Context(), query)
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "browse listings failed",
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	h.render.Render(w, r, http.StatusOK, "index", indexPage{
		page:     newPage(r, "Services"),
		Query:    query,
		Listings: listings,
	})
}

// AddForm renders the listing creation form. Anonymous users never reach
// this; the route requires a session.
func (h *ListingHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "add", addPage{page: newPage(r, "Offer a service")})
}

// Add handles the listing creation form submission. Validation problems,
// including an unparseable price, re-render the form with the submitted
// values preserved.
func (h *ListingHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess := SessionFromContext(r.Context())

	input := service.CreateListingInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Price:       r.PostFormValue("price"),
		AccountID:   sess.AccountID,
	}

	_, err := h.listings.Create(r.Context(), input)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			data := addPage{
				page:            newPage(r, "Offer a service"),
				FormTitle:       input.Title,
				FormDescription: input.Description,
				FormPrice:       input.Price,
			}
			data.Error = userMessage(err)
			h.render.Render(w, r, apperrors.HTTPStatus(err), "add", data)
			return
		}
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "create listing failed",
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Detail renders a single listing with its reviews.
func (h *ListingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	h.renderDetail(w, r, id, http.StatusOK, "", "", "")
}

// CreateReview handles the review form submission on the detail page.
// Anonymous submissions are redirected to the login page.
func (h *ListingHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	id, ok := h.listingID(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	content := r.PostFormValue("content")
	ratingRaw := r.PostFormValue("rating")

	rating, err := strconv.Atoi(ratingRaw)
	if err != nil {
		h.renderDetail(w, r, id, http.StatusBadRequest, "Rating must be a whole number from 1 to 5.", content, ratingRaw)
		return
	}

	input := service.CreateReviewInput{
		ListingID: id,
		AccountID: sess.AccountID,
		Content:   content,
		Rating:    rating,
	}

	if _, err := h.reviews.Create(r.Context(), input); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			h.renderError(w, r, http.StatusNotFound, "Service not found", "The service you tried to review does not exist.")
		case errors.Is(err, apperrors.ErrInvalidInput):
			h.renderDetail(w, r, id, apperrors.HTTPStatus(err), userMessage(err), content, ratingRaw)
		default:
			logger.FromContext(r.Context()).ErrorContext(r.Context(), "create review failed",
				slog.Int64("listing_id", id),
				slog.String("error", err.Error()),
			)
			h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		}
		return
	}

	http.Redirect(w, r, "/service/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// About renders the static about page.
func (h *ListingHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "about", newPage(r, "About"))
}

// renderDetail loads a listing and its reviews and renders the detail page,
// optionally with an inline review form error.
func (h *ListingHandler) renderDetail(w http.ResponseWriter, r *http.Request, id int64, status int, formError, formContent, formRating string) {
	detail, err := h.listings.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.renderError(w, r, http.StatusNotFound, "Service not found", "No service with that id exists.")
			return
		}
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "get listing failed",
			slog.Int64("listing_id", id),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	reviews, err := h.reviews.ListForListing(r.Context(), id)
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "list reviews failed",
			slog.Int64("listing_id", id),
			slog.String("error", err.Error()),
		)
		h.renderError(w, r, http.StatusInternalServerError, "Something went wrong", "Please try again later.")
		return
	}

	data := detailPage{
		page:        newPage(r, detail.Title),
		Listing:     detail,
		Reviews:     reviews,
		FormContent: formContent,
		FormRating:  formRating,
	}
	data.Error = formError

	h.render.Render(w, r, status, "detail", data)
}

// listingID parses the {id} route parameter. Anything that is not a positive
// integer renders a 404.
func (h *ListingHandler) listingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.renderError(w, r, http.StatusNotFound, "Service not found", "No service with that id exists.")
		return 0, false
	}
	return id, true
}
