package domain

// Tables lists every persisted entity in migration order.
var Tables = []interface{}{
	&User{},
	&Category{},
	&Product{},
	&Review{},
	&Cart{},
	&CartItem{},
	&Order{},
	&OrderItem{},
}
