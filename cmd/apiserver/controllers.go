package main

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/drblury/openapiserver/api"
)

type item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

type itemPage struct {
	Page  int64  `json:"page"`
	Size  int64  `json:"size"`
	Total int    `json:"total"`
	Items []item `json:"items"`
}

// inventory is the in-memory store behind the sample controllers.
type inventory struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]item
}

func newInventory(seed ...item) *inventory {
	inv := &inventory{items: make(map[int64]item)}
	for _, it := range seed {
		inv.add(it)
	}
	return inv
}

func (inv *inventory) add(it item) item {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.nextID++
	it.ID = inv.nextID
	inv.items[it.ID] = it
	return it
}

func (inv *inventory) controllers() map[string]api.Controller {
	return map[string]api.Controller{
		"hello":      hello,
		"listItems":  inv.list,
		"createItem": inv.create,
		"getItem":    inv.get,
		"deleteItem": inv.remove,
	}
}

func hello(_ context.Context, req *api.Request) (any, error) {
	name, _ := req.Params.String("name")
	message := "Hello " + name
	if shout, _ := req.Params.Bool("shout"); shout {
		message = strings.ToUpper(message) + "!"
	}
	return map[string]string{"message": message}, nil
}

func (inv *inventory) list(_ context.Context, req *api.Request) (any, error) {
	page, _ := req.Params.Int("page")
	size, _ := req.Params.Int("size")
	maxPrice, limited := req.Params.Float("maxPrice")

	inv.mu.RLock()
	matched := make([]item, 0, len(inv.items))
	for _, it := range inv.items {
		if limited && it.Price > maxPrice {
			continue
		}
		matched = append(matched, it)
	}
	inv.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	result := itemPage{Page: page, Size: size, Total: len(matched), Items: []item{}}
	if start := page * size; start < int64(len(matched)) {
		end := min(start+size, int64(len(matched)))
		result.Items = matched[start:end]
	}
	return result, nil
}

func (inv *inventory) create(_ context.Context, req *api.Request) (any, error) {
	body, _ := req.Body.(map[string]any)
	name, _ := body["name"].(string)
	price, _ := body["price"].(float64)

	created := inv.add(item{Name: name, Price: price})
	return &api.Response{
		Status: http.StatusCreated,
		Header: http.Header{"Location": {req.URL.Path + "/" + strconv.FormatInt(created.ID, 10)}},
		Body:   created,
	}, nil
}

func (inv *inventory) get(_ context.Context, req *api.Request) (any, error) {
	id, err := pathID(req)
	if err != nil {
		return nil, err
	}

	inv.mu.RLock()
	it, ok := inv.items[id]
	inv.mu.RUnlock()
	if !ok {
		return nil, api.NewError(http.StatusNotFound, "item %d not found", id)
	}
	return it, nil
}

func (inv *inventory) remove(_ context.Context, req *api.Request) (any, error) {
	id, err := pathID(req)
	if err != nil {
		return nil, err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, ok := inv.items[id]; !ok {
		return nil, api.NewError(http.StatusNotFound, "item %d not found", id)
	}
	delete(inv.items, id)
	return nil, nil
}

func pathID(req *api.Request) (int64, error) {
	id, err := strconv.ParseInt(req.PathParams["id"], 10, 64)
	if err != nil {
		return 0, api.NewError(http.StatusBadRequest, "invalid item id %q", req.PathParams["id"])
	}
	return id, nil
}
