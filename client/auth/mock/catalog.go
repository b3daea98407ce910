package mock

import "github.com/viant/storefront/model"

var promocodes = map[string]int{
	"WELCOME10": 10,
	"SUMMER25":  25,
}

func defaultProducts() []*model.Product {
	return []*model.Product{
		{ID: "p1", Name: "Linen shirt", Category: "apparel", Price: 49.9},
		{ID: "p2", Name: "Canvas sneakers", Category: "shoes", Price: 69.0},
		{ID: "p3", Name: "Wool scarf", Category: "apparel", Price: 24.5},
		{ID: "p4", Name: "Leather belt", Category: "accessories", Price: 35.0},
		{ID: "p5", Name: "Rain jacket", Category: "apparel", Price: 119.0},
	}
}
