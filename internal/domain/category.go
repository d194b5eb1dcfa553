package domain

// Category описывает категорию товара (таблица product_category)
type Category struct {
	ID   int64
	Name string
}

func NewCategory(name string) *Category {
	return &Category{
		Name: name,
	}
}
