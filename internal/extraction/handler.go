package extraction

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

// maxReceiptSize bounds the multipart parse buffer at 10 MB
const maxReceiptSize = 10 << 20

type ClientAPI interface {
	ProcessReceipt(ctx context.Context, filename string, file io.Reader, phoneNumber string) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Client ClientAPI
}

func NewHandler(client ClientAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Client:      client,
	}
}

// ExtractReceipt accepts a multipart receipt upload and proxies it to
// the extraction service
func (h *Handler) ExtractReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		h.Logger.Error("ExtractReceipt: invalid multipart form", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "receipt file is required")
		return
	}
	defer file.Close()

	phone := r.FormValue("phone_number")
	if phone == "" {
		h.WriteError(w, http.StatusBadRequest, "phone_number is required")
		return
	}

	result, err := h.Client.ProcessReceipt(r.Context(), header.Filename, file, phone)
	if err != nil {
		h.Logger.Error("ExtractReceipt: extraction failed", "error", err)

		if appErr, ok := internalerrors.IsAppError(err); ok {
			status, body := appErr.ToHTTPResponse()
			h.WriteJSON(w, status, body)
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "receipt extraction failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
