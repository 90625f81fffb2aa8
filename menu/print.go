package menu

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
)

// PrintMenu renders the current menu as a downloadable PDF card. Unavailable
// drinks are skipped.
func (h *Handler) PrintMenu(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	drinks, err := h.store.ListAll(ctx)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, "Homebar Menu")
	pdf.Ln(16)

	for _, d := range drinks {
		if !d.Available {
			continue
		}

		name := d.Name
		if name == "" {
			name = d.KoreanName
		}
		if name == "" {
			name = d.Base + " cocktail"
		}

		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, name)
		pdf.Ln(6)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s  |  %s  |  %d%% ABV  |  %s", d.Base, d.Glass, d.ABV, d.ShakeOrStir))
		pdf.Ln(5)

		if len(d.Ingredients) > 0 {
			parts := make([]string, 0, len(d.Ingredients))
			for _, ing := range d.Ingredients {
				parts = append(parts, ing.Item+" "+ing.Amount)
			}
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, strings.Join(parts, ", "), "", "", false)
		}

		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, d.Description, "", "", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=menu.pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
