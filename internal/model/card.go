package model

import (
	"time"

	"gorm.io/datatypes"
)

// Card 卡牌主表（StoredRecord，主键为远端目录的卡牌ID，非自增）
type Card struct {
	ID            int64          `gorm:"column:id;primaryKey;comment:卡牌ID（远端目录主键，非自增）"`
	Name          string         `gorm:"column:name;type:varchar(255);not null;index;comment:卡牌名称"`
	Type          string         `gorm:"column:type;type:varchar(64);comment:卡牌类型（Effect Monster等）"`
	FrameType     string         `gorm:"column:frame_type;type:varchar(32);comment:卡框类型"`
	Desc          string         `gorm:"column:description;type:text;comment:卡牌效果描述"`
	DescEmbedding datatypes.JSON `gorm:"column:desc_embedding;comment:描述向量（JSON数组，未计算时为NULL）"`
	Race          string         `gorm:"column:race;type:varchar(64);comment:种族"`
	Archetype     *string        `gorm:"column:archetype;type:varchar(128);comment:系列（可空）"`
	Atk           *int           `gorm:"column:atk;comment:攻击力（非怪兽卡为空）"`
	Def           *int           `gorm:"column:def;comment:守备力（非怪兽卡为空）"`
	Level         *int           `gorm:"column:level;comment:等级（可空）"`
	Attribute     *string        `gorm:"column:attribute;type:varchar(32);comment:属性（可空）"`
	PendDesc      *string        `gorm:"column:pend_desc;type:text;comment:灵摆效果描述（可空）"`
	MonsterDesc   *string        `gorm:"column:monster_desc;type:text;comment:怪兽效果描述（可空）"`
	Scale         *int           `gorm:"column:scale;comment:灵摆刻度（可空）"`
	LinkVal       *int           `gorm:"column:linkval;comment:连接值（可空）"`
	LinkMarkers   datatypes.JSON `gorm:"column:linkmarkers;comment:连接箭头列表（JSON数组，可空）"`
	ImagePath     *string        `gorm:"column:image_path;type:varchar(512);comment:本地卡图路径（未下载时为空）"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// TableName 指定卡牌表名
func (c *Card) TableName() string {
	return "cards"
}

// CardSet 卡牌所属卡包（一张卡可出现在多个卡包中，card_id为外键）
type CardSet struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CardID        int64  `gorm:"column:card_id;index;not null;comment:关联卡牌ID"`
	SetName       string `gorm:"column:set_name;type:varchar(255);comment:卡包名称"`
	SetCode       string `gorm:"column:set_code;type:varchar(64);comment:卡包编号"`
	SetRarity     string `gorm:"column:set_rarity;type:varchar(64);comment:稀有度"`
	SetRarityCode string `gorm:"column:set_rarity_code;type:varchar(16);comment:稀有度代码"`
	SetPrice      string `gorm:"column:set_price;type:varchar(32);comment:卡包单卡价格"`
}

// TableName 指定卡包表名
func (s *CardSet) TableName() string {
	return "card_sets"
}

// CardImage 卡图URL记录（仅保留远端URL，本地路径在cards.image_path）
type CardImage struct {
	ID              uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CardID          int64  `gorm:"column:card_id;index;not null;comment:关联卡牌ID"`
	ImageURL        string `gorm:"column:image_url;type:varchar(512);comment:原图URL"`
	ImageURLSmall   string `gorm:"column:image_url_small;type:varchar(512);comment:小图URL"`
	ImageURLCropped string `gorm:"column:image_url_cropped;type:varchar(512);comment:裁剪图URL"`
}

// TableName 指定卡图表名
func (i *CardImage) TableName() string {
	return "card_images"
}

// CardPrice 各交易平台价格快照
type CardPrice struct {
	ID                uint64 `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CardID            int64  `gorm:"column:card_id;index;not null;comment:关联卡牌ID"`
	CardmarketPrice   string `gorm:"column:cardmarket_price;type:varchar(32);comment:Cardmarket价格"`
	TcgplayerPrice    string `gorm:"column:tcgplayer_price;type:varchar(32);comment:TCGPlayer价格"`
	EbayPrice         string `gorm:"column:ebay_price;type:varchar(32);comment:eBay价格"`
	AmazonPrice       string `gorm:"column:amazon_price;type:varchar(32);comment:Amazon价格"`
	CoolstuffincPrice string `gorm:"column:coolstuffinc_price;type:varchar(32);comment:CoolStuffInc价格"`
}

// TableName 指定价格表名
func (p *CardPrice) TableName() string {
	return "card_prices"
}

// BanlistInfo 禁限卡信息（每张卡至多一条）
type BanlistInfo struct {
	ID      uint64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CardID  int64   `gorm:"column:card_id;uniqueIndex;not null;comment:关联卡牌ID"`
	BanTCG  *string `gorm:"column:ban_tcg;type:varchar(32);comment:TCG禁限状态（可空）"`
	BanOCG  *string `gorm:"column:ban_ocg;type:varchar(32);comment:OCG禁限状态（可空）"`
	BanGoat *string `gorm:"column:ban_goat;type:varchar(32);comment:GOAT禁限状态（可空）"`
}

// TableName 指定禁限表名
func (b *BanlistInfo) TableName() string {
	return "banlist_info"
}
