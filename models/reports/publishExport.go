package reports

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/sirupsen/logrus"
)

type ExportReceipt struct {
	Report    string `json:"report"`
	ObjectKey string `json:"object_key"`
	AccessURL string `json:"access_url"`
	RowCount  int    `json:"row_count"`
	MessageId string `json:"message_id,omitempty"`
}

// uploader and publisher are replaced in tests.
var (
	uploader  = utils.UploadToGCS
	publisher = config.PublishReportExported
)

// ExportToStorage runs the report, stores it as xlsx in the export bucket and announces it on the export topic.
// A missing topic only skips the announcement.
func ExportToStorage(ctx context.Context, name string, filters Filters) (*ExportReceipt, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	result, err := Execute(ctx, def.Key, filters)
	if err != nil {
		return nil, err
	}
	data, err := ExportExcel(result, def.Title)
	if err != nil {
		return nil, err
	}

	exportedAt := time.Now()
	objectKey := utils.ExportObjectKey(def.Key, exportedAt, "xlsx")
	url, err := uploader(ctx, objectKey, ExcelContentType, data)
	if err != nil {
		return nil, err
	}

	receipt := &ExportReceipt{
		Report:    def.Key,
		ObjectKey: objectKey,
		AccessURL: url,
		RowCount:  len(result.Result),
	}

	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	by, _ := utils.GetUserNameFromContext(ctx)
	msgId, err := publisher(ctx, config.ReportExportMessage{
		Report:        def.Key,
		Filters:       filters.Map(),
		ObjectKey:     objectKey,
		AccessURL:     url,
		RowCount:      receipt.RowCount,
		ExportedAt:    exportedAt,
		ExportedBy:    by,
		CorrelationId: cid,
	})
	switch {
	case errors.Is(err, config.ErrPubSubDisabled):
	case err != nil:
		config.LogError(config.GetLogger(), "publishExport.go", "ExportToStorage", "publisher", objectKey, err)
		return receipt, err
	default:
		receipt.MessageId = msgId
	}
	config.LogInfo(config.GetLogger(), "publishExport.go", "ExportToStorage", "report exported", logrus.Fields{
		"report":         def.Key,
		"object_key":     objectKey,
		"rows":           receipt.RowCount,
		"message_id":     receipt.MessageId,
		"correlation_id": cid,
	})
	return receipt, nil
}
