package generator

// Reference is one open data source shown under its publisher.
type Reference struct {
	Publisher string
	URLs      []string
}

// Content is the static text of the dashboard.
type Content struct {
	Title                string
	MapSummary           string
	MapCaption           string
	RelationshipsHeading string
	Relationships        []string
	TableCaption         string
	KeyLabel             string
	ReferencesHeading    string
	References           []Reference
}

// DefaultContent returns the text published with the 2024/25 drug mortality data.
func DefaultContent() Content {
	return Content{
		Title:      "Drug Related Mortality in Scotland by Regional Health Board 2024/25",
		MapSummary: "The map below displays open source drug mortality related data from the National Records of Scotland (NRS) for each of the Scottish Health Board Regions. Click on or hover over your Health Board for an insight into the factors affecting drug mortality in your area:",
		MapCaption: "Figure 1: Map of the latest drug mortality open data for the Scottish Health Board Regions",

		RelationshipsHeading: "Potential Data Relationships",
		Relationships: []string{
			"The LDP drug standard in Scotland is a target requiring that 90% of people referred for drug or alcohol treatment start it within three weeks of their referral. This standard aims to ensure fast access to recovery-focused specialist treatment for problematic drug and alcohol use",
			"People with addiction often have one or more associated health issues or drug related disorders. This could include increased risk of lung or heart disease, stroke, cancer, or mental health conditions",
			"Opiates or opioids are drugs used to treat pain. They are very addictive and can be misused illegally. Opiates are derived from plants and opioids are synthetic drugs that have the same actions as opiates",
			"Benzodiazepines are a type of sedative medication. This means they slow down the body and brain's functions. They can be used to help with anxiety and insomnia (difficult getting to sleep or staying asleep). They are also highly addictive",
			"Gabapentinoids are a class of highly addictive medications, such as gabapentin and pregabalin, primarily used to treat neuropathic pain (nerve pain) from conditions like shingles or diabetes, and also used for epilepsy and anxiety",
			"Cocaine is a powerfully addictive and dangerous stimulant drug made from the leaves of the coca plant. As a central nervous system stimulant, it produces an intense, short-lived euphoric rush by flooding the brain's reward system with dopamine. Cocaine is illegal in most countries and carries severe risks for both physical and mental health",
			"Ecstasy is a stimulant drug that may increase feelings of empathy as it is a hallucinogen. It is a designer drug and is both illegal and addictive in nature",
			"Amphetamines are central nervous system stimulants that are used in the treatment of attention deficit hyperactivity disorder, narcolepsy, and obesity. They should not be taken without a prescription and they are highly addictive",
			"When combined, ketamine and xylazine are used in veterinary medicine for sedation and anesthesia, but their illicit use as a 'tranq dope' has led to dangerous health consequences in humans",
			"Alcohol addiction is a chronic relapsing disorder associated with compulsive alcohol drinking, the loss of control over intake, and the emergence of a negative emotional state when alcohol is no longer available",
			"Polydrug use is the use of more than one drug at a time. Polydrug use increases the risk of drug harms and death. This includes mixing alcohol with other drugs",
			"Drug use is far more common among younger people, however the median age of those who are taking drugs is increasing",
			"Poverty and inequality are consistently highlighted as primary drivers of problematic drug use and related deaths in Scotland. People in the most deprived areas are significantly more likely to die from drug misuse compared to those in the least deprived areas",
		},

		TableCaption: "Table 1: Latest open drug mortality related data for the Scottish Health Board Regions with the highest 50% of column values highlighted in dark grey",

		KeyLabel:          "Health Board Code",
		ReferencesHeading: "Open Data References",
		References: []Reference{
			{
				Publisher: "National Records of Scotland",
				URLs:      []string{"https://www.nrscotland.gov.uk/publications/drug-related-deaths-in-scotland-2024/"},
			},
			{
				Publisher: "Public Health Scotland",
				URLs: []string{
					"https://www.opendata.nhs.scot/dataset/drug-related-hospital-statistics-scotland",
					"https://www.opendata.nhs.scot/dataset/drug-and-alcohol-treatment-waiting-times",
				},
			},
			{
				Publisher: "Scotland's Census 2022 - National Records of Scotland",
				URLs:      []string{"https://www.scotlandscensus.gov.uk/webapi/jsf/tableView/tableView.xhtml"},
			},
			{
				Publisher: "Scottish Surveys Core Questions 2023 - Scottish Government",
				URLs:      []string{"https://www.gov.scot/publications/scottish-surveys-core-questions-2023/documents/"},
			},
		},
	}
}
