package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go-supplychain-router/internal/ledger"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/metrics"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/internal/repository"
	"go-supplychain-router/internal/service"

	"github.com/google/uuid"
)

// Request is an HTTP-style event, independent of the gateway that produced it.
type Request struct {
	Method         string
	Path           string
	PathParameters map[string]string
	Body           string
}

// Response is the normalized reply handed back to the gateway.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// Route labels, used for metrics.
const (
	routeCreate    = "create"
	routeTransfer  = "transfer"
	routeStatus    = "status"
	routeRead      = "read"
	routeUnmatched = "unmatched"
)

const opRead = "read"

const (
	msgBadRequest     = "Bad request or unsupported route"
	msgNotFound       = "Product not found"
	msgDuplicate      = "Product already exists"
	msgTransferDenied = "Only current owner can transfer"
	msgStatusDenied   = "Only current owner can update status"
	msgInvalidStatus  = "Invalid status"
	msgIDOutOfRange   = "Product id out of range"
	msgInternal       = "Internal Server Error"
)

var (
	transferPath = regexp.MustCompile(`^/product/(\d+)/transfer$`)
	statusPath   = regexp.MustCompile(`^/product/(\d+)/status$`)
)

var (
	errEmptyBody    = errors.New("request body is empty")
	errIDOutOfRange = errors.New("product id out of range")
)

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type createdBody struct {
	Message   string `json:"message"`
	ProductID uint64 `json:"productId"`
}

type transferredBody struct {
	Message   string `json:"message"`
	ProductID string `json:"productId"`
	NewOwner  string `json:"newOwner"`
}

type statusBody struct {
	Message   string `json:"message"`
	ProductID string `json:"productId"`
	Status    string `json:"status"`
}

type productBody struct {
	ProductID  string `json:"productId"`
	Owner      string `json:"owner"`
	Status     string `json:"status"`
	LastUpdate string `json:"lastUpdate"`
}

// Router maps method and path onto the product operations.
type Router struct {
	service service.ProductService
	log     *logger.Logger
}

func NewRouter(s service.ProductService, log *logger.Logger) *Router {
	return &Router{service: s, log: log}
}

// Handle never returns an error: every failure becomes a JSON response.
func (r *Router) Handle(ctx context.Context, req Request) Response {
	reqLog := r.log.With(
		"request_id", uuid.NewString(),
		"method", req.Method,
		"path", req.Path,
	)
	ctx = reqLog.WithContext(ctx)

	route, resp := r.dispatch(ctx, req)
	metrics.RecordResponse(route, resp.StatusCode)

	reqLog.Info().Str("route", route).Int("status", resp.StatusCode).Msg("request handled")
	return resp
}

func (r *Router) dispatch(ctx context.Context, req Request) (string, Response) {
	switch req.Method {
	case http.MethodPost:
		if req.Path == "/product" {
			return routeCreate, r.createProduct(ctx, req)
		}

	case http.MethodPut:
		if m := transferPath.FindStringSubmatch(req.Path); m != nil {
			return routeTransfer, r.transferOwnership(ctx, m[1], req)
		}
		if m := statusPath.FindStringSubmatch(req.Path); m != nil {
			return routeStatus, r.updateStatus(ctx, m[1], req)
		}

	case http.MethodGet:
		if id := req.PathParameters["id"]; id != "" {
			return routeRead, r.getProduct(ctx, id)
		}
	}

	return routeUnmatched, jsonResponse(http.StatusBadRequest, errorBody{Error: msgBadRequest})
}

func (r *Router) createProduct(ctx context.Context, req Request) Response {
	var input model.CreateProductRequest
	if err := decodeBody(req.Body, &input); err != nil {
		return r.failure(ctx, ledger.OpCreate, err)
	}

	if _, err := r.service.AddProduct(ctx, input); err != nil {
		return r.failure(ctx, ledger.OpCreate, err)
	}
	return jsonResponse(http.StatusCreated, createdBody{Message: "Product added", ProductID: input.ID})
}

func (r *Router) transferOwnership(ctx context.Context, rawID string, req Request) Response {
	productID, err := parseID(rawID)
	if err != nil {
		return r.failure(ctx, ledger.OpTransfer, err)
	}

	var input model.TransferRequest
	if err := decodeBody(req.Body, &input); err != nil {
		return r.failure(ctx, ledger.OpTransfer, err)
	}

	if _, err := r.service.TransferOwnership(ctx, productID, input); err != nil {
		return r.failure(ctx, ledger.OpTransfer, err)
	}
	return jsonResponse(http.StatusOK, transferredBody{
		Message:   "Ownership transferred",
		ProductID: rawID,
		NewOwner:  input.NewOwner,
	})
}

func (r *Router) updateStatus(ctx context.Context, rawID string, req Request) Response {
	productID, err := parseID(rawID)
	if err != nil {
		return r.failure(ctx, ledger.OpStatus, err)
	}

	var input model.StatusRequest
	if err := decodeBody(req.Body, &input); err != nil {
		return r.failure(ctx, ledger.OpStatus, err)
	}

	if _, err := r.service.UpdateStatus(ctx, productID, input); err != nil {
		return r.failure(ctx, ledger.OpStatus, err)
	}
	return jsonResponse(http.StatusOK, statusBody{
		Message:   "Status updated",
		ProductID: rawID,
		Status:    input.Status,
	})
}

func (r *Router) getProduct(ctx context.Context, rawID string) Response {
	productID, err := parseID(rawID)
	if err != nil {
		return r.failure(ctx, opRead, err)
	}

	product, err := r.service.GetProduct(ctx, productID)
	if err != nil {
		return r.failure(ctx, opRead, err)
	}
	return jsonResponse(http.StatusOK, productBody{
		ProductID:  rawID,
		Owner:      product.Owner,
		Status:     product.Status,
		LastUpdate: product.LastUpdate,
	})
}

// failure maps service, ledger and store errors onto the response taxonomy.
// Malformed bodies and validation failures are unclassified: they answer
// 500 with the underlying message.
func (r *Router) failure(ctx context.Context, op string, err error) Response {
	switch {
	case errors.Is(err, errIDOutOfRange):
		return jsonResponse(http.StatusBadRequest, errorBody{Error: msgIDOutOfRange})
	case errors.Is(err, service.ErrInvalidStatus):
		return jsonResponse(http.StatusBadRequest, errorBody{Error: msgInvalidStatus})
	case errors.Is(err, ledger.ErrDuplicate):
		return jsonResponse(http.StatusConflict, errorBody{Error: msgDuplicate})
	case errors.Is(err, ledger.ErrNotOwner):
		return jsonResponse(http.StatusConflict, errorBody{Error: notOwnerMessage(op, err)})
	case errors.Is(err, repository.ErrProductNotFound):
		return jsonResponse(http.StatusNotFound, errorBody{Error: msgNotFound})
	}

	logger.FromContext(ctx).Error().Err(err).Str("op", op).Msg("error processing request")
	return jsonResponse(http.StatusInternalServerError, errorBody{Error: msgInternal, Details: err.Error()})
}

// notOwnerMessage prefers the reason the contract gave over the operation.
func notOwnerMessage(op string, err error) string {
	switch msg := err.Error(); {
	case strings.Contains(msg, msgStatusDenied):
		return msgStatusDenied
	case strings.Contains(msg, msgTransferDenied):
		return msgTransferDenied
	case op == ledger.OpStatus:
		return msgStatusDenied
	}
	return msgTransferDenied
}

func decodeBody(body string, v interface{}) error {
	if strings.TrimSpace(body) == "" {
		return errEmptyBody
	}
	return json.Unmarshal([]byte(body), v)
}

// parseID accepts ids in the uint64 range. Longer digit strings are
// rejected with errIDOutOfRange; anything else is returned as a parse error.
func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %s", errIDOutOfRange, raw)
	}
	return id, err
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

func jsonResponse(status int, body interface{}) Response {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"Internal Server Error"}`)
	}
	return Response{
		StatusCode: status,
		Headers:    defaultHeaders(),
		Body:       string(payload),
	}
}
