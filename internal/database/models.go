package database

// DailyReport is one day's report metadata for a job.
type DailyReport struct {
	ID              int64
	Job             string
	ReportDate      string
	MDDepth         *float64
	TVDDepth        *float64
	PresentActivity *string
	Engineer        *string
	Remarks         *string
}

// ShakerSlot is one shaker position on an equipment status row.
type ShakerSlot struct {
	Name  *string
	Hours *float64
	Mesh  [4]*float64
}

// CentrifugeSlot is one centrifuge position on an equipment status row.
type CentrifugeSlot struct {
	Name     *string
	Hours    *float64
	FeedRate *float64
	Type     *string
}

// HydrocycloneSlot holds desander/desilter/mud-cleaner readings.
type HydrocycloneSlot struct {
	Hours *float64
	Size  *float64
	Cones *int64
}

// EquipmentStatus is one day's solids-control equipment readings for a job.
// The source keeps the row wide: three shaker slots, three centrifuge slots,
// and one slot per hydrocyclone role.
type EquipmentStatus struct {
	ID          int64
	Job         string
	ReportDate  string
	Shakers     [3]ShakerSlot
	Centrifuges [3]CentrifugeSlot
	Desander    HydrocycloneSlot
	Desilter    HydrocycloneSlot
	MudCleaner  HydrocycloneSlot
}

// MudSample is one fluid-property sample.
// SandContent stays raw text: some exports use a comma decimal separator.
type MudSample struct {
	ID                  int64
	Job                 string
	ReportDate          string
	SampleTime          *string
	MudWeight           *float64
	PlasticViscosity    *float64
	YieldPoint          *float64
	Gel10s              *float64
	Gel10m              *float64
	Gel30m              *float64
	SolidsContent       *float64
	SandContent         *string
	LGSPct              *float64
	HGSPct              *float64
	DrillSolidsPct      *float64
	PH                  *float64
	Chloride            *float64
	FiltrateAPI         *float64
	OilRatio            *float64
	ElectricalStability *float64
}

// ChemicalTxn is one chemical add/loss transaction.
type ChemicalTxn struct {
	ID         int64
	Job        string
	ReportDate string
	ItemName   *string
	AddLoss    *string
	Quantity   *float64
	RepUnits   *string
}

// Circulation is one day's circulating volume snapshot.
type Circulation struct {
	ID         int64
	Job        string
	ReportDate string
	TotalCirc  *float64
	PitVolume  *float64
	InStorage  *float64
	MudType    *string
}

// JobStats contains aggregate counts for one job.
type JobStats struct {
	Job             string
	ReportCount     int
	SampleCount     int
	EquipmentDays   int
	ChemicalTxns    int
	UniqueChemicals int
	FirstDateRaw    *string
	LastDateRaw     *string
	MaxDepthMD      *float64
	MaxDepthTVD     *float64
	MudType         *string
	Engineers       []string
}
