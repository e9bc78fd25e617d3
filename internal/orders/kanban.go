package orders

import "perrada/internal/models"

var columnTitles = map[models.OrderStatus]string{
	models.StatusPendingPayment: "Nuevos Pedidos",
	models.StatusPreparing:      "En Preparación",
	models.StatusReadyDelivery:  "Listo para Reparto",
	models.StatusCompleted:      "Completado",
}

type Column struct {
	Status models.OrderStatus `json:"status"`
	Title  string             `json:"title"`
	Count  int                `json:"count"`
	Orders []BoardOrder       `json:"orders"`
}

type Kanban struct {
	Columns   []Column     `json:"columns"`
	Cancelled []BoardOrder `json:"cancelled"`
}

// GroupKanban buckets orders by status keeping their order. Cancelled
// orders are kept apart since they have no column.
func GroupKanban(orders []BoardOrder) Kanban {
	k := Kanban{
		Columns:   make([]Column, len(models.KanbanColumns)),
		Cancelled: []BoardOrder{},
	}
	index := make(map[models.OrderStatus]int, len(models.KanbanColumns))
	for i, status := range models.KanbanColumns {
		k.Columns[i] = Column{Status: status, Title: columnTitles[status], Orders: []BoardOrder{}}
		index[status] = i
	}

	for _, order := range orders {
		if i, ok := index[order.Status]; ok {
			k.Columns[i].Orders = append(k.Columns[i].Orders, order)
			k.Columns[i].Count++
			continue
		}
		if order.Status == models.StatusCancelled {
			k.Cancelled = append(k.Cancelled, order)
		}
	}
	return k
}
