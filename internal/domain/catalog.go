package domain

// Template represents one website template in the gallery.
type Template struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Industry  string   `json:"industry"`
	Thumbnail string   `json:"thumbnail"`
	DemoURL   string   `json:"demoUrl"`
	Features  []string `json:"features"`
	Category  string   `json:"category"`
}

// Industry groups the templates offered to one business vertical.
type Industry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Templates   []Template `json:"templates"`
}

// TemplateOption is the delivery package a template can be bought as.
type TemplateOption struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Features    []string `json:"features"`
	PriceIDR    int64    `json:"priceIdr"` // whole rupiah per billing period (or one-off)
	PriceLabel  string   `json:"price"`
	Recommended bool     `json:"recommended,omitempty"`
}

// AvailableIndustries returns the industry catalog.
func AvailableIndustries() []Industry {
	return []Industry{
		{
			ID:          "makanan",
			Name:        "Makanan & Minuman",
			Description: "Restoran, warung, katering, kafe",
			Icon:        "🍽️",
			Templates: []Template{
				{
					ID:        "restoran-modern",
					Name:      "Restoran Modern",
					Industry:  "makanan",
					Thumbnail: "https://images.pexels.com/photos/260922/pexels-photo-260922.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Menu Digital", "Reservasi Online", "Lokasi Maps"},
					Category:  "Restoran",
				},
				{
					ID:        "warung-tradisional",
					Name:      "Warung Tradisional",
					Industry:  "makanan",
					Thumbnail: "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Menu Sederhana", "WhatsApp Order", "Jam Buka"},
					Category:  "Warung",
				},
				{
					ID:        "kafe-kopi",
					Name:      "Kafe & Kopi",
					Industry:  "makanan",
					Thumbnail: "https://images.pexels.com/photos/302899/pexels-photo-302899.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Menu Kopi", "Suasana Foto", "WiFi Info"},
					Category:  "Kopi",
				},
			},
		},
		{
			ID:          "fashion",
			Name:        "Fashion & Pakaian",
			Description: "Butik, distro, fashion online",
			Icon:        "👕",
			Templates: []Template{
				{
					ID:        "butik-modern",
					Name:      "Butik Modern",
					Industry:  "fashion",
					Thumbnail: "https://images.pexels.com/photos/994517/pexels-photo-994517.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Katalog Produk", "Size Guide", "Instagram Feed"},
					Category:  "Butik",
				},
				{
					ID:        "distro-casual",
					Name:      "Distro Casual",
					Industry:  "fashion",
					Thumbnail: "https://images.pexels.com/photos/1069155/pexels-photo-1069155.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Koleksi Terbaru", "Pre-Order", "Testimonial"},
					Category:  "Distro",
				},
			},
		},
		{
			ID:          "jasa",
			Name:        "Jasa & Layanan",
			Description: "Salon, bengkel, konsultan, service",
			Icon:        "🔧",
			Templates: []Template{
				{
					ID:        "salon-kecantikan",
					Name:      "Salon Kecantikan",
					Industry:  "jasa",
					Thumbnail: "https://images.pexels.com/photos/3993449/pexels-photo-3993449.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Booking Online", "Price List", "Gallery"},
					Category:  "Salon",
				},
				{
					ID:        "bengkel-motor",
					Name:      "Bengkel Motor",
					Industry:  "jasa",
					Thumbnail: "https://images.pexels.com/photos/2244746/pexels-photo-2244746.jpeg?auto=compress&cs=tinysrgb&w=400",
					DemoURL:   "#",
					Features:  []string{"Layanan Service", "Kontak Darurat", "Jam Buka"},
					Category:  "Bengkel",
				},
			},
		},
	}
}

// AvailableTemplateOptions returns the purchasable delivery packages.
func AvailableTemplateOptions() []TemplateOption {
	return []TemplateOption{
		{
			ID:          "custom-dashboard",
			Name:        "Dashboard BisnisBAIK",
			Description: "Dashboard khusus yang mudah digunakan dengan fitur lengkap untuk bisnis Indonesia",
			Icon:        "🎯",
			Features: []string{
				"Editor drag & drop yang mudah",
				"Integrasi WhatsApp otomatis",
				"Analytics bisnis Indonesia",
				"Template khusus industri lokal",
				"Support bahasa Indonesia",
				"Backup otomatis",
				"Mobile app management",
			},
			PriceIDR:    99000,
			PriceLabel:  "Gratis - Rp 99rb/tahun",
			Recommended: true,
		},
		{
			ID:          "wordpress",
			Name:        "WordPress Dashboard",
			Description: "Gunakan WordPress yang familiar dengan ribuan plugin dan tema",
			Icon:        "📝",
			Features: []string{
				"Dashboard WordPress standar",
				"Akses ke 50,000+ plugin",
				"Tema WordPress kompatibel",
				"SEO tools lengkap",
				"Community support besar",
				"Customization unlimited",
				"Export/import mudah",
			},
			PriceIDR:   149000,
			PriceLabel: "Rp 149rb/tahun",
		},
		{
			ID:          "html-export",
			Name:        "Export HTML",
			Description: "Download file HTML lengkap untuk hosting sendiri atau development lanjutan",
			Icon:        "💾",
			Features: []string{
				"File HTML, CSS, JS lengkap",
				"Responsive design",
				"Clean code structure",
				"No dependencies",
				"Host dimana saja",
				"Full ownership",
				"Developer friendly",
			},
			PriceIDR:   299000,
			PriceLabel: "Rp 299rb sekali bayar",
		},
	}
}

// GetIndustry returns the industry for a given ID, or nil if not found.
func GetIndustry(id string) *Industry {
	for _, ind := range AvailableIndustries() {
		if ind.ID == id {
			return &ind
		}
	}
	return nil
}

// GetTemplate returns the template for a given ID across all industries.
func GetTemplate(id string) *Template {
	for _, ind := range AvailableIndustries() {
		for _, t := range ind.Templates {
			if t.ID == id {
				return &t
			}
		}
	}
	return nil
}

// GetTemplateOption returns the option for a given ID, or nil if not found.
func GetTemplateOption(id string) *TemplateOption {
	for _, o := range AvailableTemplateOptions() {
		if o.ID == id {
			return &o
		}
	}
	return nil
}
