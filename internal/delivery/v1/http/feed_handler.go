package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/internal/usecase"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

const (
	maxJSONBody     = 1 << 20
	multipartMemory = 8 << 20
)

type FeedHandler struct {
	converterUsecase usecase.ConverterUC
	metrics          *Metrics
	uploadMaxBytes   int64
	logger           logger.Logger
}

func NewFeedHandler(converterUsecase usecase.ConverterUC, metrics *Metrics, uploadMaxBytes int64, logger logger.Logger) *FeedHandler {
	return &FeedHandler{
		converterUsecase: converterUsecase,
		metrics:          metrics,
		uploadMaxBytes:   uploadMaxBytes,
		logger:           logger,
	}
}

// listSuppliers
//
//	@Summary	Список поставщиков
//	@Tags		feeds
//	@Produce	json
//	@Success	200	{array}	SupplierResponse
//	@Router		/suppliers [get]
func (f *FeedHandler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, toSupplierResponses(f.converterUsecase.ListSuppliers()))
}

// convert
//
//	@Summary		Конвертация фида поставщика
//	@Description	Скачивает фид, фильтрует и возвращает отчет или CSV (output=csv)
//	@Tags			feeds
//	@Accept			json
//	@Produce		json,text/csv
//	@Param			request	body		ConvertRequest	true	"Поставщик и фильтры"
//	@Param			output	query		string			false	"csv — скачать файл"
//	@Success		200		{object}	ReportResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/feeds/convert [post]
func (f *FeedHandler) convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	var req ConvertRequest
	if err := decodeJSON(r, &req); err != nil {
		f.logger.Warnf("%d %s: %v", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err)
		WriteError(w, err)
		return
	}
	if req.Supplier == "" {
		WriteError(w, e.Wrap("supplier", e.ErrMissingFields))
		return
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		WriteError(w, e.ErrInvalidMinStock)
		return
	}

	res, err := f.converterUsecase.Convert(r.Context(), &usecase.ConvertReq{
		Supplier: req.Supplier,
		Filter:   newFilter(req.Producer, req.MinStock),
	})
	f.respond(w, r, domain.OriginSupplier, res, err)
}

// upload
//
//	@Summary		Конвертация загруженного XML
//	@Description	Формат определяется по содержимому
//	@Tags			feeds
//	@Accept			multipart/form-data
//	@Produce		json,text/csv
//	@Param			file		formData	file	true	"XML-фид"
//	@Param			producer	formData	string	false	"Фильтр по производителю"
//	@Param			min_stock	formData	int		false	"Минимальный остаток"
//	@Param			output		query		string	false	"csv — скачать файл"
//	@Success		200			{object}	ReportResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		413			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/feeds/upload [post]
func (f *FeedHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, f.uploadMaxBytes)

	if err := ensureMultipartForm(r, multipartMemory); err != nil {
		f.logger.Warnf("%d upload rejected: %v", ToHTTPResponse(err).Code, err)
		WriteError(w, err)
		return
	}

	minStock, err := parseMinStock(r.FormValue("min_stock"))
	if err != nil {
		WriteError(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			WriteError(w, e.Wrap("file", e.ErrMissingFields))
			return
		}
		WriteError(w, e.Wrap(err.Error(), e.ErrStatusBadRequest))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := f.converterUsecase.ConvertUpload(r.Context(), &usecase.UploadReq{
		FileName: header.Filename,
		Data:     data,
		Filter:   newFilter(r.FormValue("producer"), minStock),
	})
	f.respond(w, r, domain.OriginUpload, res, err)
}

func (f *FeedHandler) respond(w http.ResponseWriter, r *http.Request, origin domain.RunOrigin, res *usecase.ConversionResult, err error) {
	if err != nil {
		resp := ToHTTPResponse(err)
		f.metrics.ObserveConversion(origin, "", resp.Kind)
		if resp.Code >= http.StatusInternalServerError {
			f.logger.Errorf(err, "conversion failed")
		} else {
			f.logger.Warnf("conversion rejected: %v", err)
		}
		WriteError(w, err)
		return
	}

	f.metrics.ObserveConversion(origin, res.Report.Format.String(), "ok")
	f.metrics.ObserveProducts(res.Report.Format.String(), res.Report.ParsedCount)

	if wantsCSV(r) {
		WriteCSV(w, res.FileName, res.CSV)
		return
	}

	WriteSuccess(w, http.StatusOK, toReportResponse(res))
}
