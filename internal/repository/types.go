package repository

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Category string // 为空表示全部分类
	Search   string // 名称/描述模糊匹配
}
