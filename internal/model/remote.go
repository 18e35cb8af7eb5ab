package model

// CatalogueResponse 远端目录接口返回结构（一次GET拉全量，不分页）
type CatalogueResponse struct {
	Data []*RemoteCard `json:"data"`
}

// RemoteCard 远端目录中的单张卡牌原始结构（归一化后不可变）
type RemoteCard struct {
	ID          int64             `json:"id"`                     // 卡牌ID（全局唯一主键）
	Name        string            `json:"name"`                   // 卡牌名称
	Type        string            `json:"type"`                   // 卡牌类型
	FrameType   string            `json:"frameType"`              // 卡框类型
	Desc        string            `json:"desc"`                   // 效果描述
	Race        string            `json:"race"`                   // 种族
	Archetype   *string           `json:"archetype,omitempty"`    // 系列（可空）
	Atk         *int              `json:"atk,omitempty"`          // 攻击力（可空）
	Def         *int              `json:"def,omitempty"`          // 守备力（可空）
	Level       *int              `json:"level,omitempty"`        // 等级（可空）
	Attribute   *string           `json:"attribute,omitempty"`    // 属性（可空）
	PendDesc    *string           `json:"pend_desc,omitempty"`    // 灵摆效果（可空）
	MonsterDesc *string           `json:"monster_desc,omitempty"` // 怪兽效果（可空）
	Scale       *int              `json:"scale,omitempty"`        // 灵摆刻度（可空）
	LinkVal     *int              `json:"linkval,omitempty"`      // 连接值（可空）
	LinkMarkers []string          `json:"linkmarkers,omitempty"`  // 连接箭头（可空）
	CardSets    []RemoteCardSet   `json:"card_sets,omitempty"`    // 所属卡包列表
	CardImages  []RemoteCardImage `json:"card_images,omitempty"`  // 卡图列表（首张视为原画）
	CardPrices  []RemoteCardPrice `json:"card_prices,omitempty"`  // 价格快照列表
	BanlistInfo *RemoteBanlist    `json:"banlist_info,omitempty"` // 禁限信息（可空）
}

// RemoteCardSet 远端卡包条目
type RemoteCardSet struct {
	SetName       string `json:"set_name"`
	SetCode       string `json:"set_code"`
	SetRarity     string `json:"set_rarity"`
	SetRarityCode string `json:"set_rarity_code"`
	SetPrice      string `json:"set_price"`
}

// RemoteCardImage 远端卡图条目
type RemoteCardImage struct {
	ImageURL        string `json:"image_url"`
	ImageURLSmall   string `json:"image_url_small"`
	ImageURLCropped string `json:"image_url_cropped"`
}

// RemoteCardPrice 远端价格条目
type RemoteCardPrice struct {
	CardmarketPrice   string `json:"cardmarket_price"`
	TcgplayerPrice    string `json:"tcgplayer_price"`
	EbayPrice         string `json:"ebay_price"`
	AmazonPrice       string `json:"amazon_price"`
	CoolstuffincPrice string `json:"coolstuffinc_price"`
}

// RemoteBanlist 远端禁限条目
type RemoteBanlist struct {
	BanTCG  *string `json:"ban_tcg,omitempty"`
	BanOCG  *string `json:"ban_ocg,omitempty"`
	BanGoat *string `json:"ban_goat,omitempty"`
}

// FirstImageURL 取首张卡图URL（异画重复卡去重时保留首次出现的URL）
func (c *RemoteCard) FirstImageURL() string {
	if len(c.CardImages) == 0 {
		return ""
	}
	return c.CardImages[0].ImageURL
}
