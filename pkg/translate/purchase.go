// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package translate

import (
	"github.com/Iterable/firehose-iterable/pkg/models"
	"github.com/Iterable/firehose-iterable/pkg/target"
	"github.com/Iterable/firehose-iterable/pkg/transform"
)

// ProductActionEvent translates a purchase action into a trackPurchase
// request; every other product action produces no dispatch
func ProductActionEvent(ctx *Context, event *models.ProductActionEvent) (Result, error) {
	if event.Action != models.ProductActionPurchase {
		return skip("product action '%s' is not forwarded", event.Action)
	}
	if ctx.User.Empty() {
		return skip("purchase has no email or userId to attach to")
	}

	coerce := ctx.Config.CoerceStringsToScalars

	items := make([]target.CommerceItem, 0, len(event.Products))
	for _, product := range event.Products {
		items = append(items, commerceItem(product, coerce))
	}

	return dispatch(target.TrackPurchaseRequest{
		ID:        event.ID,
		CreatedAt: event.TimestampSeconds(),
		Total:     event.TotalAmount,
		Items:     items,
		User: target.APIUser{
			Email:      ctx.User.Email,
			UserID:     ctx.User.UserID,
			DataFields: transform.ConvertUserAttributes(ctx.Batch.UserAttributes, coerce),
		},
	})
}

// commerceItem maps one product onto an Iterable commerce item. The
// source does not differentiate sku from id so the product id is used
// for both; the category list holds at most one entry.
func commerceItem(product models.Product, coerce bool) target.CommerceItem {
	item := target.CommerceItem{
		ID:         product.ID,
		SKU:        product.ID,
		Name:       product.Name,
		Price:      product.Price,
		Quantity:   int(product.Quantity),
		DataFields: transform.ConvertUserAttributes(product.Attributes, coerce),
	}
	if product.Category != "" {
		item.Categories = []string{product.Category}
	}
	return item
}
