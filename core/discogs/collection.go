package discogs

import (
	"context"
	"fmt"
)

// CollectionPage is one page of a user's collection folder listing.
type CollectionPage struct {
	Pagination struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
		Items int `json:"items"`
	} `json:"pagination"`
	Releases []struct {
		// The top-level id is the collection instance; the release id
		// lives under basic_information.
		BasicInformation struct {
			ID int64 `json:"id"`
		} `json:"basic_information"`
		DateAdded string `json:"date_added"`
	} `json:"releases"`
}

// CollectionPage fetches one page of the user's "All" collection folder.
func (c *Client) CollectionPage(ctx context.Context, username string, page, perPage int) (*CollectionPage, error) {
	path := fmt.Sprintf("/users/%s/collection/folders/0/releases?page=%d&per_page=%d&sort=added&sort_order=desc",
		username, page, perPage)

	var out CollectionPage
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
