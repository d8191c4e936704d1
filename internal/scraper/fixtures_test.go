package scraper

const (
	inventoryURL = "https://www.curvemotors.ca/cars"
	civicURL     = "https://www.curvemotors.ca/cars/used/2019-honda-civic-lx-1234567"
	fordURL      = "https://www.curvemotors.ca/cars/used/2020-ford-f-150-xlt-7654321"
	missingURL   = "https://www.curvemotors.ca/cars/used/2015-mazda-3-gs-1111111"
	civicReport  = "https://vhr.carfax.ca/?id=civic"
	fordReport   = "https://vhr.carfax.ca/?id=ford"
)

const inventoryPage = `<html><head><title>Used Cars | Curve Motors</title></head><body>
<div id="vehicle-101" class="carItem">
  <a href="/cars/used/2019-honda-civic-lx-1234567"><img class="carItem_fixed_size_img" src="https://cdn.azureedge.net/curvemotors/101-main.jpg"></a>
  <div class="ribbon-special-price">Special</div>
  <p class="p__odometer">45,210 km</p>
  <p class="inventory_p__sellprice_line"><del>$19,995</del></p>
  <p class="inventory_p__price">$19,995</p>
  <p class="inventory_p__price">$17,495</p>
  <span data-cg-vin="2HGFC2F59KH000001"></span>
  <a href="https://vhr.carfax.ca/?id=civic">Carfax</a>
  <div class="inventory_div__cell"><span>Body Style</span><span class="right-in-left">Sedan</span></div>
  <div class="inventory_div__cell"><span>Fuel Type</span><span class="right-in-left">Gasoline</span></div>
  <div class="inventory_div__cell"><span>Exterior</span><span class="right-in-left">Blue</span></div>
  <div class="inventory_div__cell"><span>Interior</span><span class="right-in-left">Black</span></div>
  <div class="inventory_div__cell"><span>Transmission</span><span class="right-in-left">CVT</span></div>
  <div class="inventory_div__cell"><span>Engine</span><span class="right-in-left">2.0L I4</span></div>
  <div class="inventory_div__cell"><span>Drivetrain</span><span class="right-in-left">FWD</span></div>
  <div class="inventory_div__cell"><span>Doors</span><span class="right-in-left">4 doors</span></div>
  <div class="inventory_div__cell"><span>Stock #</span><span class="right-in-left">C1234</span></div>
  <div class="bg-photo"><span>24 Photos</span></div>
</div>
<div id="vehicle-102" class="carItem">
  <a href="/cars/used/2020-ford-f-150-xlt-7654321">View</a>
  <p class="inventory_p__sellprice_line"><del>$42,000</del></p>
  <a href="https://vhr.carfax.ca/?id=ford">Carfax</a>
</div>
<div id="vehicle-103" class="carItem">
  <p>Coming soon</p>
</div>
<div id="vehicle-104" class="carItem">
  <a href="/cars/used/2015-mazda-3-gs-1111111">View</a>
</div>
<button class="load-more">Load More</button>
</body></html>`

const civicDetailPage = `<html><head>
<title>Used 2019 Honda Civic - Curve Motors</title>
<meta property="og:title" content="2019 Honda Civic">
</head><body>
<p class="DetaileProductCustomrWeb-title">2019 Honda Civic LX Low KM</p>
<div class="DetaileProductCustomrWeb-description-text">Clean history, one owner. FINANCE FOR $89.50 A WEEK OAC.</div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label">Condition</span><span class="vehicle-detail-list-value">Used</span></div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label">Engine Size</span><span class="vehicle-detail-list-value">2.0L</span></div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label">City Fuel</span><span class="vehicle-detail-list-value">7.8L/100km</span></div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label">Hwy Fuel</span><span class="vehicle-detail-list-value">6.0L/100km</span></div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label"># of Passengers</span><span class="vehicle-detail-list-value">5 seats</span></div>
<div class="vehicle-detail-list-card"><span class="vehicle-detail-list-label">Warranty</span></div>
<img src="https://cdn.azureedge.net/curvemotors/thumb-a.jpg">
<img src="https://cdn.azureedge.net/curvemotors/a.jpg">
<img src="https://cdn.azureedge.net/curvemotors/thumb-b.jpg">
<img src="https://cdn.azureedge.net/curvemotors/site-logo.png">
<img src="https://other.example/c.jpg">
<a href="tel:4165550199">416-555-0199</a>
<address><strong>100 Main St, Toronto</strong></address>
</body></html>`

const fordDetailPage = `<html><head>
<title>2020 Ford F-150 XLT SuperCrew - Curve Motors</title>
</head><body>
<div class="DetaileProductCustomrWeb-description-text">Short.</div>
<p>Questions? Call 905.555.0123 any time.</p>
</body></html>`

const civicReportPage = `<html><body>
<p class="vin-text">2HGFC2F59KH000001</p>
<div class="info">Report #: 1234567
Report Date: 2024-05-01</div>
<div class="coa-value"><p>Canada</p></div>
<div class="odo-value"><p>45,210 KM</p></div>
<div class="tile"><h3>Accident/Damage</h3><p>1 accident reported</p></div>
<div class="tile"><h3>Service Records</h3><p>7 service records</p></div>
<div class="tile"><h3>Last Registered In</h3><strong>Ontario</strong></div>
<div class="tile"><h3>Open Recall</h3><p>No open recalls</p></div>
<div class="tile"><h3>Stolen Check</h3><div>No theft reported</div></div>
<div class="tile"><h3>U.S. History</h3><p>No U.S. history</p></div>
<table id="detailed-history-table"><tbody>
<tr><td></td><td>2019-03-01</td><td>12 km</td><td>Ontario MTO</td><td>Registration</td><td>First Owner reported</td></tr>
<tr><td></td><td>2020-06-15</td><td>15,000 km</td><td>Dealer</td><td>Service</td><td>Oil change</td></tr>
<tr><td></td><td>2021-01-10</td><td>22,000 km</td><td>Police</td><td>Accident Reported</td><td>Rear bumper collision</td></tr>
<tr><td></td><td>2022-02-02</td><td>30,000 km</td><td>Ontario MTO</td><td>Registration</td><td>New Owner reported</td></tr>
<tr><td></td><td>2023-04-04</td><td>38,000 km</td><td>Ontario MTO</td><td>Registration</td><td>Owner reported in Ontario</td></tr>
<tr><td></td><td>2023-09-09</td><td>41,000 km</td><td>Insurer</td><td>Claim</td><td>Front damage repaired</td></tr>
<tr><td>Summary</td><td>only</td><td>three</td></tr>
</tbody></table>
<div id="accident-damage-section"><div class="mobile-table-row">should not be used for details</div></div>
</body></html>`

const fordReportPage = `<html><body>
<p class="vin-text">1FTEW1EP0LF000002</p>
<div class="mobile-table-row">2020-01-01 Registration</div>
<div class="mobile-table-row">2021-01-01 Service</div>
<div class="mobile-table-row">2022-01-01 Registration</div>
<div id="accident-damage-section">
<div class="mobile-table-row">2022-01-01
Minor collision, left side</div>
<div class="mobile-table-row">Repaired</div>
</div>
</body></html>`

func fixturePages() map[string]string {
	return map[string]string{
		inventoryURL: inventoryPage,
		civicURL:     civicDetailPage,
		fordURL:      fordDetailPage,
		civicReport:  civicReportPage,
		fordReport:   fordReportPage,
	}
}
