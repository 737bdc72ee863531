package labels

import "strings"

// Key names a context variable consumed by the templates.
type Key string

// Letterhead and footer keys shared by both document kinds.
const (
	CompTel1Req Key = "compTel1req"
	CompTel2Req Key = "compTel2req"
	CompTel1    Key = "compTel1"
	CompTel2    Key = "compTel2"
	Email       Key = "emailadd"
	Link        Key = "link"
	Address     Key = "address"
	CompName    Key = "compName"
	FooterLine1 Key = "footerLine1"
	FooterLine2 Key = "footerLine2"
)

// Partial-proof labels and column headers.
const (
	Title               Key = "title"
	CustomerNameLabel   Key = "customerNameLabel"
	CustomerNumberLabel Key = "customerNumberLabel"
	InvNumberLabel      Key = "invNumberLabel"
	OrderNumberLabel    Key = "orderNumberLabel"
	DriverNameLabel     Key = "driverNameLabel"
	RouteNumberLabel    Key = "routeNumberLabel"
	DeliveryDateLabel   Key = "deliveryDateLabel"
	RemarksLabel        Key = "remarquesLabel"
	State               Key = "state"
	SalesNumber         Key = "SalesNumber"
	ItemCode            Key = "itemCode"
	Description         Key = "description"
	OrderedQuantity     Key = "orderedQuantity"
	ReturnedQuantity    Key = "returnedquantity"
	NotDeliveredQty     Key = "notdeliveredquantity"
	DeliveredQuantity   Key = "deliveredQuantity"
	Sum                 Key = "sum"
)

// Table maps keys to localized text for one language.
type Table map[Key]string

// Catalog maps each language to its table.
type Catalog map[Language]Table

// Lookup returns the text for key in lang, or "" if either is missing.
func (c Catalog) Lookup(lang Language, key Key) string {
	return c[lang][key]
}

// Keys returns the keys defined for lang, in no particular order.
func (c Catalog) Keys(lang Language) []Key {
	t := c[lang]
	keys := make([]Key, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	return keys
}

// Letterhead is the fixed company block printed on full delivery proofs.
// Full proofs are always Arabic.
var Letterhead = Catalog{
	Arabic: {
		CompTel1Req: "هاتف:",
		CompTel2Req: "فاكس:",
		CompTel1:    "+962 6 4022251",
		CompTel2:    "+962 6 4022626",
		Email:       "info@finehh.com",
		Link:        "www.finehh.com",
		Address:     "ص.ب. 154 عمان 11118 الأردن",
		CompName:    "شركة فاين لصناعة الورق الصحي ذ.م.م",
		FooterLine1: "لأي استفسارات أو لإعادة جدولة التسليم، يُرجى التواصل مع فريق التوزيع أو السائق مباشرةً.",
		FooterLine2: "يُرجى التأكد من تواجد المستلم أو الممثل المفوَّض في موقع التسليم خلال الوقت المحدد.",
	},
}

// Partial holds the bilingual label set of partial delivery/return proofs.
var Partial = Catalog{
	Arabic: {
		CompTel1Req:         "هاتف:",
		CompTel2Req:         "فاكس:",
		CompTel1:            "+962 6 4022251",
		CompTel2:            "+962 6 4022626",
		Email:               "info@finehh.com",
		Link:                "www.finehh.com",
		Title:               "إثبات الإرجاع الجزئي / التسليم الجزئي",
		CustomerNameLabel:   "اسم العميل :",
		CustomerNumberLabel: "رقم العميل :",
		InvNumberLabel:      "رقم الفاتورة",
		OrderNumberLabel:    "رقم الطلب :",
		DriverNameLabel:     "اسم السائق :",
		RouteNumberLabel:    "رقم المسار:",
		DeliveryDateLabel:   "تاريخ التسليم :",
		RemarksLabel:        "ملاحظات",
		State:               "الوضع :",
		Address:             "ص.ب. 154 عمّان 11118 الأردن",
		CompName:            "شركة فاين لصناعة الورق الصحي ذ.م.م",
		FooterLine1:         "تم إنشاء هذا المستند تلقائياً بواسطة نظام فونوي لإدارة النقل",
		FooterLine2:         "© فونوي - جميع الحقوق محفوظة 2025",
		SalesNumber:         "الرقم التسلسلي",
		ItemCode:            "رمز الصنف",
		Description:         "الوصف :",
		OrderedQuantity:     "الكمية المطلوبة",
		ReturnedQuantity:    "الكمية المُرجعة",
		NotDeliveredQty:     "الكمية غير المُسلمة",
		DeliveredQuantity:   "الكمية المُسلمة",
		Sum:                 "المجموع",
	},
	English: {
		CompTel1Req:         "Tel:",
		CompTel2Req:         "Fax:",
		CompTel1:            "+962 6 4022251",
		CompTel2:            "+962 6 4022626",
		Email:               "info@finehh.com",
		Link:                "www.finehh.com",
		Title:               "Partial Return / Partial Delivery Proof",
		CustomerNameLabel:   "Customer Name:",
		CustomerNumberLabel: "Customer No.:",
		InvNumberLabel:      "Invoice No.",
		OrderNumberLabel:    "Order No.:",
		DriverNameLabel:     "Driver Name:",
		RouteNumberLabel:    "Route No.:",
		DeliveryDateLabel:   "Delivery Date:",
		RemarksLabel:        "Remarks",
		State:               "Status:",
		Address:             "P.O. Box 154 Amman 11118 Jordan",
		CompName:            "Fine Hygienic Holding",
		FooterLine1:         "This document was automatically generated by Vonoy TMS.",
		FooterLine2:         "© Vonoy - All rights reserved 2025",
		SalesNumber:         "Serial No.",
		ItemCode:            "Item Code",
		Description:         "Description",
		OrderedQuantity:     "Ordered Qty",
		ReturnedQuantity:    "Returned Qty",
		NotDeliveredQty:     "Undelivered Qty",
		DeliveredQuantity:   "Delivered Qty",
		Sum:                 "Total",
	},
}

// Mode selects the delivery- or return-flavored wording of a partial proof.
type Mode int

const (
	ModeDelivery Mode = iota
	ModeReturn
)

// ParseMode treats "RETURN" in any case as ModeReturn and anything else as delivery.
func ParseMode(raw string) Mode {
	if strings.EqualFold(strings.TrimSpace(raw), "RETURN") {
		return ModeReturn
	}
	return ModeDelivery
}

var modeLabels = map[Language][2]string{
	Arabic:  {ModeDelivery: "تسليم جزئي", ModeReturn: "إرجاع جزئي"},
	English: {ModeDelivery: "Partial Delivery", ModeReturn: "Partial Return"},
}

// ModeLabel returns the localized name of m.
func ModeLabel(lang Language, m Mode) string {
	return modeLabels[lang][m]
}
