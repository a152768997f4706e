package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/abhikhya/shopcart/internal/es"
	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/mykafka"
	"github.com/abhikhya/shopcart/internal/repo"
)

type CatalogService struct {
	Repo     *repo.GormRepo
	ES       *elasticsearch.Client
	Producer *mykafka.Producer
}

type ProductPage struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

func (s *CatalogService) publish(ctx context.Context, productID uint, event map[string]interface{}) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(productID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", "product_events", "error", err)
	}
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.ES == nil {
		return
	}
	l := logging.FromContext(ctx)

	doc, err := json.Marshal(p)
	if err != nil {
		l.Error("es index marshal error", "productID", p.ID, "error", err)
		return
	}
	res, err := s.ES.Index(
		es.ProductIndex,
		bytes.NewReader(doc),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		l.Error("es index error", "productID", p.ID, "error", err)
		return
	}
	res.Body.Close()
}

func (s *CatalogService) deindex(ctx context.Context, id uint) {
	if s.ES == nil {
		return
	}
	res, err := s.ES.Delete(
		es.ProductIndex,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		logging.FromContext(ctx).Error("es delete error", "productID", id, "error", err)
		return
	}
	res.Body.Close()
}

func (s *CatalogService) Create(ctx context.Context, name string, price float64) (*models.Product, error) {
	verr := NewValidationError()
	if name == "" {
		verr.Add("name", "this field is required")
	}
	if price < 0 {
		verr.Add("price", "must not be negative")
	}
	if !verr.Empty() {
		return nil, verr
	}

	p := models.Product{Name: name, Price: roundPrice(price)}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.index(ctx, &p)
	s.publish(ctx, p.ID, map[string]interface{}{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	return &p, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, name string, price float64) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	p.Name = name
	p.Price = roundPrice(price)
	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.index(ctx, p)
	s.publish(ctx, p.ID, map[string]interface{}{
		"type":      "product_updated",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if deleted == 0 {
		return ErrProductNotFound
	}

	s.deindex(ctx, id)
	s.publish(ctx, id, map[string]interface{}{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, offset, limit int) (*ProductPage, error) {
	total, items, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &ProductPage{Total: total, Items: items}, nil
}
