package service

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
	appErrors "github.com/noah-isme/kiosk-complaint-api/pkg/errors"
	"github.com/noah-isme/kiosk-complaint-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// User-facing export messages.
const (
	MessageUnsupportedFormat = "지원하지 않는 형식입니다."
	MessagePDFFontMissing    = "PDF 내보내기에 필요한 한글 글꼴이 설정되지 않았습니다."
)

const exportTitle = "민원 처리 현황"

var exportHeaders = []string{"접수일시", "이름", "전화번호", "유형", "제목", "내용", "상태", "답변"}

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered document ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the administrator's visible complaint list.
type ExportService struct {
	renderers map[string]renderer
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Timestamps are printed in Korea
// Standard Time when the zone database is available. PDF output needs a Hangul
// TrueType font; without pdfFontPath only CSV is offered.
func NewExportService(pdfFontPath string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	renderers := map[string]renderer{ExportFormatCSV: export.NewCSVExporter(true)}
	if pdfFontPath != "" {
		renderers[ExportFormatPDF] = export.NewPDFExporter(pdfFontPath).WithColumnWeights(map[string]float64{
			"접수일시": 1.4,
			"제목":   1.6,
			"내용":   2.6,
			"답변":   2.2,
		})
	}
	return &ExportService{
		renderers: renderers,
		location:  loc,
		logger:    logger,
		now:       time.Now,
	}
}

// Render builds a document of the given format from records, keeping their order.
func (s *ExportService) Render(records []models.Complaint, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	r, ok := s.renderers[format]
	if !ok && format == ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, MessagePDFFontMissing)
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, MessageUnsupportedFormat)
	}

	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(records))}
	for _, c := range records {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"접수일시": c.CreatedAt.In(s.location).Format("2006-01-02 15:04"),
			"이름":   c.SubmitterName,
			"전화번호": c.SubmitterContact,
			"유형":   string(c.Category),
			"제목":   c.Title,
			"내용":   c.Body,
			"상태":   string(c.Status),
			"답변":   c.ReplyText(),
		})
	}

	data, err := r.Render(dataset, exportTitle)
	if err != nil {
		s.logger.Error("complaint export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "내보내기에 실패했습니다.")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("complaints-%s.%s", s.now().In(s.location).Format("20060102-150405"), format),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}
