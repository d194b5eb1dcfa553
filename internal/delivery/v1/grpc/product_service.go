package grpc

import (
	"context"
	"math"

	"github.com/DRSN-tech/catalog-service/internal/usecase"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/logger"
	"github.com/jimlawless/whereami"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Сообщения сервиса — well-known типы protobuf, поэтому .proto-файл и кодогенерация не нужны.
const (
	getProductMethod      = "GetProduct"
	getProductsInfoMethod = "GetProductsInfo"
)

// CatalogServer — контракт сервиса catalog.v1.CatalogService.
type CatalogServer interface {
	GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	GetProductsInfo(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error)
}

type ProductService struct {
	prUC   usecase.ProductUC
	logger logger.Logger
}

func NewProductService(prUC usecase.ProductUC, logger logger.Logger) *ProductService {
	return &ProductService{prUC: prUC, logger: logger}
}

// GetProduct возвращает карточку товара по id.
func (g *ProductService) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	const op = "grpc.GetProduct"

	product, err := g.prUC.GetProduct(ctx, req.GetValue())
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := structpb.NewStruct(usecase.ProductSnapshot(product))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// GetProductsInfo принимает список id и возвращает найденные товары в "products",
// а отсутствующие id в "products_not_found". Не больше usecase.MaxProductsInfoIDs id за запрос.
func (g *ProductService) GetProductsInfo(ctx context.Context, req *structpb.ListValue) (*structpb.Struct, error) {
	const op = "grpc.GetProductsInfo"

	if len(req.GetValues()) > usecase.MaxProductsInfoIDs {
		return nil, e.Wrap(op, e.ErrTooManyIDs)
	}

	ids, err := toIDs(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info, err := g.prUC.GetProductsInfo(ctx, ids)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products := make([]any, 0, len(info.Products))
	for i := range info.Products {
		products = append(products, usecase.ProductSnapshot(&info.Products[i]))
	}
	notFound := make([]any, 0, len(info.NotFound))
	for _, id := range info.NotFound {
		notFound = append(notFound, id)
	}

	res, err := structpb.NewStruct(map[string]any{
		"products":           products,
		"products_not_found": notFound,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// maxExactID — наибольшее целое, которое float64 (число в protobuf Value) хранит без потерь.
const maxExactID = 1 << 53

func toIDs(list *structpb.ListValue) ([]int64, error) {
	ids := make([]int64, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidID)
		}

		f := n.NumberValue
		if f != math.Trunc(f) || f <= 0 || f > maxExactID {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrInvalidID)
		}
		ids = append(ids, int64(f))
	}

	return ids, nil
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: getProductMethod,
			Handler:    getProductHandler,
		},
		{
			MethodName: getProductsInfoMethod,
			Handler:    getProductsInfoHandler,
		},
	},
	Streams: []grpc.StreamDesc{},
}

func getProductHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetProduct(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(getProductMethod)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getProductsInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetProductsInfo(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(getProductsInfoMethod)}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetProductsInfo(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
