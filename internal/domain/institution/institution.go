// Package institution holds the catalog of legal data sources.
package institution

// Info describes one institution acting as a search source.
type Info struct {
	ID            string
	Name          string
	Description   string
	Endpoint      string
	Active        bool
	DocumentTypes []string
}

// Catalog resolves institution identifiers to display metadata.
type Catalog struct {
	byID  map[string]Info
	order []string
}

// NewCatalog builds a catalog preserving insertion order.
func NewCatalog(infos []Info) *Catalog {
	c := &Catalog{byID: make(map[string]Info, len(infos))}
	for _, in := range infos {
		if _, dup := c.byID[in.ID]; dup {
			continue
		}
		c.byID[in.ID] = in
		c.order = append(c.order, in.ID)
	}
	return c
}

// Get returns the institution info and whether the id is known.
func (c *Catalog) Get(id string) (Info, bool) {
	in, ok := c.byID[id]
	return in, ok
}

// DisplayName returns the display name for an id, or the id itself when unknown.
func (c *Catalog) DisplayName(id string) string {
	if in, ok := c.byID[id]; ok {
		return in.Name
	}
	return id
}

// All returns every institution in catalog order.
func (c *Catalog) All() []Info {
	out := make([]Info, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Default returns the built-in institution catalog.
func Default() *Catalog {
	return NewCatalog([]Info{
		{
			ID: "yargitay", Name: "Yargıtay",
			Description: "Yargıtay kararları ve içtihatları",
			Endpoint:    "https://karararama.yargitay.gov.tr",
			Active:      true,
			DocumentTypes: []string{
				"Karar", "İçtihat", "Daire Kararı",
			},
		},
		{
			ID: "danistay", Name: "Danıştay",
			Description:   "İdari yargı kararları ve görüşleri",
			Endpoint:      "https://www.danistay.gov.tr",
			Active:        true,
			DocumentTypes: []string{"Karar", "Görüş", "Daire Kararı"},
		},
		{
			ID: "emsal", Name: "Emsal (UYAP)",
			Description:   "UYAP Emsal Karar Sistemi",
			Endpoint:      "https://emsal.uyap.gov.tr",
			Active:        true,
			DocumentTypes: []string{"Emsal Karar", "İlke Kararı"},
		},
		{
			ID: "bedesten", Name: "Bedesten",
			Description:   "Adalet Bakanlığı alternatif karar sistemi",
			Endpoint:      "https://bedesten.adalet.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Karar", "Mevzuat"},
		},
		{
			ID: "uyusmazlik", Name: "Uyuşmazlık Mahkemesi",
			Description:   "Yetki uyuşmazlığı çözüm kararları",
			Endpoint:      "https://kararlar.uyusmazlik.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Karar"},
		},
		{
			ID: "anayasa", Name: "Anayasa Mahkemesi",
			Description:   "Norm denetimi ve bireysel başvuru kararları",
			Endpoint:      "https://normkararlarbilgibankasi.anayasa.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Norm Denetimi", "Bireysel Başvuru"},
		},
		{
			ID: "kik", Name: "KİK",
			Description:   "Kamu İhale Kurumu karar ve görüşleri",
			Endpoint:      "https://ekap.kik.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Kurul Kararı", "Görüş"},
		},
		{
			ID: "rekabet", Name: "Rekabet Kurumu",
			Description:   "Rekabet hukuku karar ve analiz raporları",
			Endpoint:      "https://www.rekabet.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Kurul Kararı", "Analiz Raporu"},
		},
		{
			ID: "sayistay", Name: "Sayıştay",
			Description:   "Mali denetim ve hesap verme kararları",
			Endpoint:      "https://www.sayistay.gov.tr",
			Active:        false,
			DocumentTypes: []string{"Genel Kurul Kararı", "Temyiz Kararı", "Daire Kararı"},
		},
		{
			ID: "kvkk", Name: "KVKK",
			Description:   "Kişisel Verileri Koruma Kurulu kararları",
			Endpoint:      "https://www.kvkk.gov.tr",
			Active:        true,
			DocumentTypes: []string{"Kurul Kararı", "İlke Kararı"},
		},
		{
			ID: "bddk", Name: "BDDK",
			Description:   "Bankacılık Düzenleme ve Denetleme Kurumu kararları",
			Endpoint:      "https://www.bddk.org.tr",
			Active:        true,
			DocumentTypes: []string{"Kurul Kararı", "Mevzuat"},
		},
	})
}
