package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-storefront-service/internal/auth"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog/importer"
	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/pkg/grpcjson"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

const ServiceName = "omnipos.storefront.v1.CatalogService"

type ListProductsRequest struct {
	Criteria dto.ProductFilterCriteria `json:"criteria"`
	Sort     string                    `json:"sort,omitempty"`
}

type GetProductRequest struct {
	ID   string `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
}

type RelatedProductsRequest struct {
	ID    string `json:"id"`
	Limit int    `json:"limit,omitempty"`
}

type FacetValuesRequest struct {
	Facet string `json:"facet"`
}

type FacetValuesResponse struct {
	Facet  string   `json:"facet"`
	Values []string `json:"values"`
}

type AdminSearchRequest struct {
	Query string `json:"query,omitempty"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

type ImportProductsRequest struct {
	Spreadsheet []byte `json:"spreadsheet"`
}

type ProductsResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
}

type ProductResponse struct {
	Product *model.Product `json:"product"`
}

type CatalogServiceServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ProductsResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListFeatured(context.Context, *emptypb.Empty) (*ProductsResponse, error)
	ListBestsellers(context.Context, *emptypb.Empty) (*ProductsResponse, error)
	GetRelatedProducts(context.Context, *RelatedProductsRequest) (*ProductsResponse, error)
	GetFacetValues(context.Context, *FacetValuesRequest) (*FacetValuesResponse, error)
	GetFacets(context.Context, *emptypb.Empty) (*dto.FacetSet, error)
	AdminSearchProducts(context.Context, *AdminSearchRequest) (*ProductsResponse, error)
	UpsertProduct(context.Context, *dto.UpsertProductInput) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*emptypb.Empty, error)
	ImportProducts(context.Context, *ImportProductsRequest) (*dto.ImportResult, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "ListProducts", CatalogServiceServer.ListProducts),
		grpcjson.Unary(ServiceName, "GetProduct", CatalogServiceServer.GetProduct),
		grpcjson.Unary(ServiceName, "ListFeatured", CatalogServiceServer.ListFeatured),
		grpcjson.Unary(ServiceName, "ListBestsellers", CatalogServiceServer.ListBestsellers),
		grpcjson.Unary(ServiceName, "GetRelatedProducts", CatalogServiceServer.GetRelatedProducts),
		grpcjson.Unary(ServiceName, "GetFacetValues", CatalogServiceServer.GetFacetValues),
		grpcjson.Unary(ServiceName, "GetFacets", CatalogServiceServer.GetFacets),
		grpcjson.Unary(ServiceName, "AdminSearchProducts", CatalogServiceServer.AdminSearchProducts),
		grpcjson.Unary(ServiceName, "UpsertProduct", CatalogServiceServer.UpsertProduct),
		grpcjson.Unary(ServiceName, "DeleteProduct", CatalogServiceServer.DeleteProduct),
		grpcjson.Unary(ServiceName, "ImportProducts", CatalogServiceServer.ImportProducts),
	},
	Metadata: "omnipos/storefront/v1/catalog.proto",
}

var _ CatalogServiceServer = (*CatalogHandler)(nil)

type CatalogHandler struct {
	uc       catalog.UseCase
	identity auth.Provider
	logger   logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, identity auth.Provider, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:       uc,
		identity: identity,
		logger:   log,
	}
}

func (h *CatalogHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ProductsResponse, error) {
	if req.Criteria.MinPrice != nil && req.Criteria.MaxPrice != nil && *req.Criteria.MinPrice > *req.Criteria.MaxPrice {
		return nil, status.Error(codes.InvalidArgument, "minPrice is greater than maxPrice")
	}

	products, err := h.uc.ListProducts(ctx, &req.Criteria, dto.ParseSortKey(req.Sort))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductsResponse{Products: products, Total: len(products)}, nil
}

func (h *CatalogHandler) GetProduct(ctx context.Context, req *GetProductRequest) (*ProductResponse, error) {
	var (
		p   *model.Product
		err error
	)
	switch {
	case req.ID != "":
		p, err = h.uc.GetProduct(ctx, req.ID)
	case req.Slug != "":
		p, err = h.uc.GetProductBySlug(ctx, req.Slug)
	default:
		return nil, status.Error(codes.InvalidArgument, "id or slug is required")
	}
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductResponse{Product: p}, nil
}

func (h *CatalogHandler) ListFeatured(ctx context.Context, _ *emptypb.Empty) (*ProductsResponse, error) {
	products, err := h.uc.ListFeatured(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductsResponse{Products: products, Total: len(products)}, nil
}

func (h *CatalogHandler) ListBestsellers(ctx context.Context, _ *emptypb.Empty) (*ProductsResponse, error) {
	products, err := h.uc.ListBestsellers(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductsResponse{Products: products, Total: len(products)}, nil
}

func (h *CatalogHandler) GetRelatedProducts(ctx context.Context, req *RelatedProductsRequest) (*ProductsResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	products, err := h.uc.RelatedProducts(ctx, req.ID, req.Limit)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductsResponse{Products: products, Total: len(products)}, nil
}

func (h *CatalogHandler) GetFacetValues(ctx context.Context, req *FacetValuesRequest) (*FacetValuesResponse, error) {
	facet, err := dto.ParseFacet(req.Facet)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	values, err := h.uc.FacetValues(ctx, facet)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &FacetValuesResponse{Facet: string(facet), Values: values}, nil
}

func (h *CatalogHandler) GetFacets(ctx context.Context, _ *emptypb.Empty) (*dto.FacetSet, error) {
	facets, err := h.uc.Facets(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return facets, nil
}

// --- Admin ---

func (h *CatalogHandler) requireAdmin(ctx context.Context) error {
	if !h.identity.IsAuthenticated(ctx) {
		return status.Error(codes.Unauthenticated, "sign in required")
	}
	if !h.identity.IsAdmin(ctx) {
		return status.Error(codes.PermissionDenied, "admin access required")
	}
	return nil
}

func (h *CatalogHandler) AdminSearchProducts(ctx context.Context, req *AdminSearchRequest) (*ProductsResponse, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	products, err := h.uc.AdminSearch(ctx, req.Query)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ProductsResponse{Products: products, Total: len(products)}, nil
}

func (h *CatalogHandler) UpsertProduct(ctx context.Context, req *dto.UpsertProductInput) (*ProductResponse, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	p, err := h.uc.UpsertProduct(ctx, req)
	if err != nil {
		return nil, h.toStatus(err)
	}
	h.logger.Info("Product saved",
		zap.String("product_id", p.ID),
		zap.String("admin_id", h.identity.CurrentUserID(ctx)),
	)
	return &ProductResponse{Product: p}, nil
}

func (h *CatalogHandler) DeleteProduct(ctx context.Context, req *DeleteProductRequest) (*emptypb.Empty, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := h.uc.DeleteProduct(ctx, req.ID); err != nil {
		return nil, h.toStatus(err)
	}
	h.logger.Info("Product deleted",
		zap.String("product_id", req.ID),
		zap.String("admin_id", h.identity.CurrentUserID(ctx)),
	)
	return &emptypb.Empty{}, nil
}

func (h *CatalogHandler) ImportProducts(ctx context.Context, req *ImportProductsRequest) (*dto.ImportResult, error) {
	if err := h.requireAdmin(ctx); err != nil {
		return nil, err
	}
	sheet, err := importer.ReadBinary(req.Spreadsheet)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := h.uc.ImportProducts(ctx, sheet.Products)
	if err != nil {
		return nil, h.toStatus(err)
	}
	result.Skipped += len(sheet.Skipped)
	result.Errors = append(result.Errors, sheet.Skipped...)
	return result, nil
}

func (h *CatalogHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, catalog.ErrDuplicateSlug):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, catalog.ErrMissingImage), errors.Is(err, catalog.ErrInvalidProduct), errors.Is(err, catalog.ErrUnknownFacet):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("catalog request failed", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}
