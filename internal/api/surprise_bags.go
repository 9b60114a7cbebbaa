package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/utafrali/DeliveryConsole/internal/domain"
)

const surpriseBagsPath = "/admin/surprise-bags"

// GetSurpriseBags lists surprise bags.
func (c *Client) GetSurpriseBags(ctx context.Context, f SurpriseBagFilter) (domain.Record, error) {
	res, err := get(ctx, c, surpriseBagsPath, f.params())
	if err != nil {
		return nil, fmt.Errorf("list surprise bags: %w", err)
	}
	return res, nil
}

// GetGroupedSurpriseBags lists surprise bags grouped by restaurant.
func (c *Client) GetGroupedSurpriseBags(ctx context.Context) (domain.Record, error) {
	res, err := get(ctx, c, surpriseBagsPath+"/grouped", nil)
	if err != nil {
		return nil, fmt.Errorf("list grouped surprise bags: %w", err)
	}
	return res, nil
}

// CreateSurpriseBag adds a surprise bag to a restaurant's inventory.
func (c *Client) CreateSurpriseBag(ctx context.Context, in domain.SurpriseBagInput) (domain.Record, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPost, surpriseBagsPath, in)
	if err != nil {
		return nil, fmt.Errorf("create surprise bag: %w", err)
	}
	return res, nil
}

// UploadSurpriseBagImage uploads an image; the response carries its hosted URL.
func (c *Client) UploadSurpriseBagImage(ctx context.Context, filename string, r io.Reader) (domain.Record, error) {
	res, err := upload(ctx, c, "/upload/surprise-bag-image", filename, r)
	if err != nil {
		return nil, fmt.Errorf("upload surprise bag image: %w", err)
	}
	return res, nil
}
