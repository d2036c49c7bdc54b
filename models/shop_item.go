package models

import "time"

type ShopItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Nome        string    `gorm:"size:100;not null" json:"nome"`
	Descricao   *string   `gorm:"type:text" json:"descricao,omitempty"`
	Categoria   string    `gorm:"type:enum('roupa','acessorio','ferramenta','pet','efeito','edicao_limitada');not null" json:"categoria"`
	PrecoDC     int       `gorm:"column:preco_dc;not null" json:"preco_dc"`
	Raridade    string    `gorm:"type:enum('comum','raro','epico','lendario');default:'comum';not null" json:"raridade"`
	RequerNivel Nivel     `gorm:"type:enum('trainee','assessor','coordenador','maestro','virtuoso');default:'trainee';not null" json:"requer_nivel"`
	ImagemURL   *string   `gorm:"size:500" json:"imagem_url,omitempty"`
	Disponivel  bool      `gorm:"not null;default:true" json:"disponivel"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ShopItem) TableName() string {
	return "shop_items"
}

type UserInventory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_user_item,unique" json:"user_id"`
	ItemID     uint      `gorm:"not null;index:idx_user_item,unique" json:"item_id"`
	DataCompra time.Time `gorm:"autoCreateTime" json:"data_compra"`
	Equipado   bool      `gorm:"not null;default:false" json:"equipado"`
}

func (UserInventory) TableName() string {
	return "user_inventory"
}
