package board

import (
	"github.com/user/podboard/internal/model"
)

// OrderColumns is the default table layout for orders.
func OrderColumns() []Column[model.Order] {
	return []Column[model.Order]{
		{Header: "NUMBER", Value: func(o model.Order) string { return o.Number }},
		{Header: "CUSTOMER", Value: func(o model.Order) string { return o.Customer }},
		{Header: "PRODUCT", Value: func(o model.Order) string { return o.Product }},
		{Header: "STATUS", Value: func(o model.Order) string { return o.Status }},
		{Header: "PLATFORM", Value: func(o model.Order) string { return o.Platform }},
		{Header: "STORE", Value: func(o model.Order) string {
			if o.Store == nil {
				return "-"
			}
			if o.Store.Name != "" {
				return o.Store.Name
			}
			return o.Store.ID
		}},
	}
}

// StoreColumns is the default table layout for stores.
func StoreColumns() []Column[model.Store] {
	return []Column[model.Store]{
		{Header: "ID", Value: func(s model.Store) string { return s.ID }},
		{Header: "NAME", Value: func(s model.Store) string { return s.Name }},
		{Header: "PLATFORM", Value: func(s model.Store) string { return s.Platform }},
		{Header: "ACCOUNT", Value: func(s model.Store) string { return s.AccountID }},
		{Header: "STATUS", Value: func(s model.Store) string { return s.Status }},
	}
}
