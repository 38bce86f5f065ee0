package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/service"
	"github.com/Skotchmaster/shopfront/internal/storage"
	"github.com/Skotchmaster/shopfront/internal/util"
)

const imageField = "image"

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	items, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("list_products_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not a positive integer", "error", err)
		return err
	}

	prod, err := h.Svc.Get(ctx, id)
	if err != nil {
		return productError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "reason", "bad query", "error", err)
			return fieldError(err)
		}
		l.Error("search_error", "status", 502, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "Search is unavailable").SetInternal(err)
	}

	if page < 1 {
		page = 1
	}
	_, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, SearchResponse{Total: total, Page: page, Size: limit, Products: items})
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	in, closeUpload, err := bindProduct(c)
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	defer closeUpload()

	prod, err := h.Svc.Create(ctx, in)
	if err != nil {
		return productError(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "id is not a positive integer", "error", err)
		return err
	}

	in, closeUpload, err := bindProduct(c)
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}
	defer closeUpload()

	prod, err := h.Svc.Update(ctx, id, in)
	if err != nil {
		return productError(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a positive integer", "error", err)
		return err
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return productError(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

func productError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", err.Error())
		return fieldError(err)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "product not found")
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	default:
		l.Error(event, "status", 500, "reason", "storage failure", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fieldError(&service.FieldError{Field: "id", Msg: "Invalid product id"})
	}
	return uint(id), nil
}

// bindProduct reads a product from multipart, urlencoded or JSON bodies. The
// returned func closes the uploaded file, if any.
func bindProduct(c echo.Context) (service.ProductInput, func(), error) {
	noop := func() {}
	ctype := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		in, err := bindProductJSON(c)
		return in, noop, err
	}

	form, err := c.FormParams()
	if err != nil {
		return service.ProductInput{}, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid form body").SetInternal(err)
	}

	in := service.ProductInput{
		Name:        form.Get("name"),
		Price:       form.Get("price"),
		Description: form.Get("description"),
	}
	if vals, ok := form["image_url"]; ok {
		v := ""
		if len(vals) > 0 {
			v = strings.TrimSpace(vals[0])
		}
		in.ImageURL = &v
	}

	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return in, noop, nil
	}

	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, noop, nil
	}
	if err != nil {
		return in, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload").SetInternal(err)
	}
	up, closer, err := openUpload(fh)
	if err != nil {
		return in, noop, echo.NewHTTPError(http.StatusBadRequest, "Invalid image upload").SetInternal(err)
	}
	in.Image = up
	return in, func() { _ = closer.Close() }, nil
}

func openUpload(fh *multipart.FileHeader) (*storage.Upload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &storage.Upload{
		Field:       imageField,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func bindProductJSON(c echo.Context) (service.ProductInput, error) {
	var req productJSON
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return service.ProductInput{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body").SetInternal(err)
	}

	in := service.ProductInput{Name: req.Name}
	if req.Description != nil {
		in.Description = *req.Description
	}

	price, err := rawPrice(req.Price)
	if err != nil {
		return in, fieldError(err)
	}
	in.Price = price

	imageURL, err := rawImageURL(req.ImageURL)
	if err != nil {
		return in, fieldError(err)
	}
	in.ImageURL = imageURL
	return in, nil
}

// rawPrice accepts a JSON number or a string holding one. Absent or null
// yields "" so the service reports it as missing.
func rawPrice(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", &service.FieldError{Field: "price", Msg: "Price must be a valid number"}
}

// rawImageURL maps an absent field to nil and null to a cleared value.
func rawImageURL(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v := ""
	if string(raw) == "null" {
		return &v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &service.FieldError{Field: "image_url", Msg: "image_url must be a string"}
	}
	v = strings.TrimSpace(v)
	return &v, nil
}
