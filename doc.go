/*
Package grade-export-sheets runs the grade exporters for a set of courses listed in a Google Sheets control table.

grade-export-sheets can be used from the command line but is really intended to be run from a cron job to refresh
the grade sheets for every subject in a semester from a single control table. Each row of the control table names a
subject, the spreadsheet and worksheet that receive its grades and the source system (moodle, dis or stepik) the
grades are exported from. A failed row never stops the batch: it is reported as '- (error)' in the 'result_<sheet>'
report written back to the control spreadsheet.

grade-export-sheets supports the following commands:

  - export, to run the exporter for every row of a control table and write the report sheet
  - duplicate, to copy the worksheets listed in a control table to Yandex Disk and report their public links
  - get, to download a control table as a TSV file
  - rating, to publish a static HTML rating page for every student in the configured grade sheets
  - version, to display the current version
*/
package sheets
