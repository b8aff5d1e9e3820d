package eosc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bluecloud-project/eoscsync/vocabulary"
)

// vocabularyEntry is one item of the portal's vocabulary listing.
type vocabularyEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
}

// FetchVocabulary downloads one vocabulary axis from the portal, e.g.
// "ACCESS_MODE", and returns it keyed by display name.
func (c *Client) FetchVocabulary(ctx context.Context, axis string) (vocabulary.Vocabulary, error) {
	entries, err := c.fetchEntries(ctx, axis)
	if err != nil {
		return vocabulary.Vocabulary{}, err
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Name] = e.ID
	}
	return vocabulary.New(strings.ToLower(axis), values), nil
}

// FetchHierarchy downloads a parent axis and its child axis and links them.
// Child display names are not unique across parents, so children are keyed
// by the composite "<parent name>.<child name>". Children whose parent is
// unknown are skipped with a warning rather than poisoning the hierarchy.
func (c *Client) FetchHierarchy(ctx context.Context, parentAxis, childAxis string) (vocabulary.Hierarchy, error) {
	parents, err := c.fetchEntries(ctx, parentAxis)
	if err != nil {
		return vocabulary.Hierarchy{}, err
	}
	children, err := c.fetchEntries(ctx, childAxis)
	if err != nil {
		return vocabulary.Hierarchy{}, err
	}

	parentNames := make(map[string]string, len(parents)) // parent id -> name
	parentValues := make(map[string]string, len(parents))
	for _, p := range parents {
		parentNames[p.ID] = p.Name
		parentValues[p.Name] = p.ID
	}

	childValues := make(map[string]string, len(children))
	parentOf := make(map[string]string, len(children))
	for _, ch := range children {
		parentName, ok := parentNames[ch.ParentID]
		if !ok {
			c.logger.Warn("vocabulary child without a known parent, skipping",
				"axis", childAxis, "child", ch.Name, "parentId", ch.ParentID)
			continue
		}
		childValues[parentName+"."+ch.Name] = ch.ID
		parentOf[ch.ID] = ch.ParentID
	}

	h := vocabulary.Hierarchy{
		Parents:  vocabulary.New(strings.ToLower(parentAxis), parentValues),
		Children: vocabulary.New(strings.ToLower(childAxis), childValues),
		ParentOf: parentOf,
	}
	if err := h.Validate(); err != nil {
		return vocabulary.Hierarchy{}, fmt.Errorf("fetched %s/%s hierarchy: %w", parentAxis, childAxis, err)
	}
	return h, nil
}

// FetchProviders downloads the ids of all onboarded providers.
func (c *Client) FetchProviders(ctx context.Context) (vocabulary.ProviderSet, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/provider/all?quantity=10000", nil)
	if err != nil {
		return vocabulary.ProviderSet{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return vocabulary.ProviderSet{}, &RemoteError{Operation: "fetching providers", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var page struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return vocabulary.ProviderSet{}, fmt.Errorf("decoding provider list: %w", err)
	}

	ids := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		ids = append(ids, r.ID)
	}
	return vocabulary.NewProviderSet(ids), nil
}

func (c *Client) fetchEntries(ctx context.Context, axis string) ([]vocabularyEntry, error) {
	path := "/vocabulary/byType/" + url.PathEscape(axis)
	resp, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RemoteError{Operation: "fetching vocabulary " + axis, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var entries []vocabularyEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decoding vocabulary %s: %w", axis, err)
	}
	return entries, nil
}
