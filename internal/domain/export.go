package domain

// ExportObject описывает CSV-выгрузку, которая хранится в S3
type ExportObject struct {
	ID          string // uuid запуска конвертации
	Bucket      string
	ObjectKey   string
	FileName    string
	Bytes       []byte
	ContentType string // Example: "text/csv; charset=utf-8"
}

func NewExportObject(id, bucket, objectKey, fileName string, data []byte) *ExportObject {
	return &ExportObject{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		FileName:    fileName,
		Bytes:       data,
		ContentType: "text/csv; charset=utf-8",
	}
}
