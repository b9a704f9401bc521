package models

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"

	"github.com/barrosyan/sistema-pronto/utils"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type PageInfo struct {
	StartCursor string `json:"startCursor"`
	EndCursor   string `json:"endCursor"`
	HasNextPage *bool  `json:"hasNextPage,omitempty"`
}

type Cursor interface {
	GetCursor() string
}

type Edge[N Cursor] struct {
	Node   *N     `json:"node"`
	Cursor string `json:"cursor"`
}

func DecodeCursor(cursor *string) (string, error) {
	decodedCursor := ""
	if cursor != nil {
		b, err := base64.StdEncoding.DecodeString(*cursor)
		if err != nil {
			return decodedCursor, err
		}
		decodedCursor = string(b)
	}
	return decodedCursor, nil
}

func EncodeCursor(cursor string) string {
	return base64.StdEncoding.EncodeToString([]byte(cursor))
}

func pageSize(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	return min(limit, maxPageSize)
}

// FetchPageByID pages rows in ascending integer id order using an opaque cursor.
func FetchPageByID[T Cursor](dbCtx *gorm.DB, limit int, after *string) ([]Edge[T], *PageInfo, error) {
	limit = pageSize(limit)
	nodes := make([]*T, 0)

	decodedCursor, err := DecodeCursor(after)
	if err != nil {
		return nil, nil, errors.New("invalid cursor")
	}
	if decodedCursor != "" {
		afterId, err := strconv.Atoi(decodedCursor)
		if err != nil {
			return nil, nil, errors.New("invalid cursor")
		}
		dbCtx = dbCtx.Where("id > ?", afterId)
	}
	if err := dbCtx.Order("id").Limit(limit + 1).Find(&nodes).Error; err != nil {
		return nil, nil, AsBackendError(err)
	}

	hasNextPage := len(nodes) > limit
	if hasNextPage {
		nodes = nodes[:limit]
	}
	edges := make([]Edge[T], 0, len(nodes))
	for _, node := range nodes {
		edges = append(edges, Edge[T]{Node: node, Cursor: EncodeCursor((*node).GetCursor())})
	}

	pageInfo := PageInfo{HasNextPage: utils.NewFalse()}
	if len(edges) > 0 {
		pageInfo = PageInfo{
			StartCursor: edges[0].Cursor,
			EndCursor:   edges[len(edges)-1].Cursor,
			HasNextPage: &hasNextPage,
		}
	}
	return edges, &pageInfo, nil
}

func (l Lead) GetCursor() string {
	return strconv.Itoa(l.ID)
}

// PaginateLeads pages the leads of every owner the caller may view.
func PaginateLeads(ctx context.Context, db *gorm.DB, filter *LeadFilter, limit int, after *string) ([]Edge[Lead], *PageInfo, error) {
	query, err := leadQuery(ctx, db, filter)
	if err != nil {
		return nil, nil, err
	}
	return FetchPageByID[Lead](query, limit, after)
}
