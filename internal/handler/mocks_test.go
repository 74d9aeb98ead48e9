package handler

import (
	"context"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

type mockShortlinkService struct {
	createBatchFunc func(ctx context.Context, req model.ShortlinkCreateRequest) (model.ShortlinkBatchResponse, error)
	listFunc        func(ctx context.Context) ([]model.Shortlink, error)
	resolveFunc     func(ctx context.Context, code string) (string, error)
	deleteFunc      func(ctx context.Context, id string) error
}

func (m *mockShortlinkService) CreateBatch(ctx context.Context, req model.ShortlinkCreateRequest) (model.ShortlinkBatchResponse, error) {
	return m.createBatchFunc(ctx, req)
}

func (m *mockShortlinkService) List(ctx context.Context) ([]model.Shortlink, error) {
	return m.listFunc(ctx)
}

func (m *mockShortlinkService) Resolve(ctx context.Context, code string) (string, error) {
	return m.resolveFunc(ctx, code)
}

func (m *mockShortlinkService) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

type mockQRService struct {
	generateBatchFunc func(ctx context.Context, req model.QRRequest) (model.QRBatchResponse, error)
}

func (m *mockQRService) GenerateBatch(ctx context.Context, req model.QRRequest) (model.QRBatchResponse, error) {
	return m.generateBatchFunc(ctx, req)
}

type mockImageService struct {
	convertFunc func(ctx context.Context, files []model.UploadedImage) (model.ImageConvertResponse, error)
}

func (m *mockImageService) Convert(ctx context.Context, files []model.UploadedImage) (model.ImageConvertResponse, error) {
	return m.convertFunc(ctx, files)
}

type mockStatusService struct {
	createFunc func(ctx context.Context, clientName string) (model.StatusCheck, error)
	listFunc   func(ctx context.Context) ([]model.StatusCheck, error)
}

func (m *mockStatusService) Create(ctx context.Context, clientName string) (model.StatusCheck, error) {
	return m.createFunc(ctx, clientName)
}

func (m *mockStatusService) List(ctx context.Context) ([]model.StatusCheck, error) {
	return m.listFunc(ctx)
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error {
	return m.err
}
